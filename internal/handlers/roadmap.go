package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devtrail/devtrail-backend/internal/requestdata"
	"github.com/devtrail/devtrail-backend/internal/services"
)

type RoadmapHandler struct {
	roadmapService        services.RoadmapService
	recommendationService services.RecommendationService
}

func NewRoadmapHandler(
	roadmapService services.RoadmapService,
	recommendationService services.RecommendationService,
) *RoadmapHandler {
	return &RoadmapHandler{
		roadmapService:        roadmapService,
		recommendationService: recommendationService,
	}
}

func (rh *RoadmapHandler) List(c *gin.Context) {
	roadmaps, err := rh.roadmapService.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "roadmaps": roadmaps})
}

func (rh *RoadmapHandler) Get(c *gin.Context) {
	detail, err := rh.roadmapService.Get(c.Request.Context(), c.Param("roadmap_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, detail)
}

func (rh *RoadmapHandler) ListNodes(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	var viewer *uuid.UUID
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		viewer = &rd.UserID
	}
	page, err := rh.roadmapService.ListNodes(c.Request.Context(), viewer, c.Param("roadmap_id"), offset, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "nodes": page.Nodes, "has_more": page.HasMore})
}

func (rh *RoadmapHandler) Related(c *gin.Context) {
	related, err := rh.roadmapService.Related(c.Request.Context(), c.Param("roadmap_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "related": related})
}

func (rh *RoadmapHandler) Search(c *gin.Context) {
	results, err := rh.roadmapService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "results": results})
}

func (rh *RoadmapHandler) Recommendations(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	roadmaps, err := rh.recommendationService.Recommend(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "recommendations": roadmaps})
}
