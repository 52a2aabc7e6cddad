package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devtrail/devtrail-backend/internal/requestdata"
	"github.com/devtrail/devtrail-backend/internal/services"
	"github.com/devtrail/devtrail-backend/internal/types"
)

type CustomRoadmapHandler struct {
	customService services.CustomRoadmapService
}

func NewCustomRoadmapHandler(customService services.CustomRoadmapService) *CustomRoadmapHandler {
	return &CustomRoadmapHandler{customService: customService}
}

func (ch *CustomRoadmapHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req services.CustomRoadmapInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	roadmap, err := ch.customService.Create(c.Request.Context(), rd.UserID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "roadmap": roadmap})
}

func (ch *CustomRoadmapHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req services.CustomRoadmapInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	roadmap, err := ch.customService.Update(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "roadmap": roadmap})
}

func (ch *CustomRoadmapHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := ch.customService.Delete(c.Request.Context(), rd.UserID, c.Param("roadmap_id")); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CustomRoadmapHandler) Get(c *gin.Context) {
	// Anonymous viewers read as the nil principal; the service still serves
	// public roadmaps and rejects private ones.
	viewer := uuid.Nil
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		viewer = rd.UserID
	}
	roadmap, nodes, err := ch.customService.Get(c.Request.Context(), viewer, c.Param("roadmap_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "roadmap": roadmap, "nodes": nodes})
}

func (ch *CustomRoadmapHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	own, public, err := ch.customService.ListForUser(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "own": own, "public": public})
}

func (ch *CustomRoadmapHandler) Clone(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req services.CloneOverrides
	// Overrides are optional; an empty body clones the source as-is.
	_ = c.ShouldBindJSON(&req)

	roadmap, err := ch.customService.Clone(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "roadmap": roadmap})
}

func (ch *CustomRoadmapHandler) AddNode(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req services.CustomNodeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	node, err := ch.customService.AddNode(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "node": node})
}

func (ch *CustomRoadmapHandler) UpdateNode(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req services.CustomNodeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	node, err := ch.customService.UpdateNode(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), c.Param("node_id"), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "node": node})
}

func (ch *CustomRoadmapHandler) DeleteNode(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := ch.customService.DeleteNode(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), c.Param("node_id")); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CustomRoadmapHandler) ReorderNodes(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		NodeIDs []string `json:"node_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := ch.customService.ReorderNodes(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), req.NodeIDs); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CustomRoadmapHandler) AddLink(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req types.ResourceLink
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	node, err := ch.customService.AddLink(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), c.Param("node_id"), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "node": node})
}

func (ch *CustomRoadmapHandler) DeleteLink(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	linkIndex, err := strconv.Atoi(c.Param("link_index"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	node, err := ch.customService.DeleteLink(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), c.Param("node_id"), linkIndex)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "node": node})
}
