package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/devtrail-backend/internal/requestdata"
	"github.com/devtrail/devtrail-backend/internal/services"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (ch *CommentHandler) Add(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	comment, err := ch.commentService.AddComment(c.Request.Context(), rd.UserID, c.Param("roadmap_id"), req.Content)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "comment": comment})
}

func (ch *CommentHandler) List(c *gin.Context) {
	comments, err := ch.commentService.ListComments(c.Request.Context(), c.Param("roadmap_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "comments": comments})
}
