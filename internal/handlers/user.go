package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/devtrail-backend/internal/requestdata"
	"github.com/devtrail/devtrail-backend/internal/services"
)

type UserHandler struct {
	userService     services.UserService
	progressService services.ProgressService
}

func NewUserHandler(userService services.UserService, progressService services.ProgressService) *UserHandler {
	return &UserHandler{userService: userService, progressService: progressService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	user, err := uh.userService.GetMe(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "user": user})
}

func (uh *UserHandler) GetDashboard(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	dashboard, err := uh.progressService.GetDashboard(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "dashboard": dashboard})
}
