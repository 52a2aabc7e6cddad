package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/devtrail-backend/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps the sentinel error chain to an HTTP status.
// Anything unrecognized is a 500.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperr.ErrPermissionDenied):
		RespondError(c, http.StatusForbidden, "permission_denied", err)
	case errors.Is(err, apperr.ErrValidation):
		RespondError(c, http.StatusBadRequest, "validation", err)
	case errors.Is(err, apperr.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, apperr.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
