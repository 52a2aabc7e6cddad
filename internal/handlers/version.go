package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devtrail/devtrail-backend/internal/requestdata"
	"github.com/devtrail/devtrail-backend/internal/services"
)

type VersionHandler struct {
	versionService services.VersionService
}

func NewVersionHandler(versionService services.VersionService) *VersionHandler {
	return &VersionHandler{versionService: versionService}
}

func (vh *VersionHandler) Create(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
	}
	// Body is optional for snapshot creation.
	_ = c.ShouldBindJSON(&req)

	version, err := vh.versionService.CreateVersion(c.Request.Context(), principalID(c), c.Param("roadmap_id"), req.Description)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "version": version})
}

func (vh *VersionHandler) List(c *gin.Context) {
	versions, err := vh.versionService.ListVersions(c.Request.Context(), c.Param("roadmap_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "versions": versions})
}

func (vh *VersionHandler) Get(c *gin.Context) {
	versionNumber, err := strconv.Atoi(c.Param("version_number"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	snapshot, err := vh.versionService.GetVersion(c.Request.Context(), c.Param("roadmap_id"), versionNumber)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "snapshot": snapshot})
}

func (vh *VersionHandler) Restore(c *gin.Context) {
	versionNumber, err := strconv.Atoi(c.Param("version_number"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := vh.versionService.RestoreVersion(c.Request.Context(), principalID(c), c.Param("roadmap_id"), versionNumber); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func principalID(c *gin.Context) *uuid.UUID {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return nil
	}
	id := rd.UserID
	return &id
}
