package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/devtrail-backend/internal/requestdata"
	"github.com/devtrail/devtrail-backend/internal/services"
)

type ProgressHandler struct {
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

func (ph *ProgressHandler) SetProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	completed, err := ph.progressService.SetProgress(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), c.Param("node_id"), req.Completed)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "completed": completed})
}

func (ph *ProgressHandler) GetProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	progress, err := ph.progressService.GetProgress(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "progress": progress})
}

func (ph *ProgressHandler) GetRoadmapProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	progress, err := ph.progressService.GetRoadmapProgress(c.Request.Context(), rd.UserID, c.Param("roadmap_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "progress": progress})
}
