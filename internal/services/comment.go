package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/apperr"
	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/types"
)

// CommentEntry is one comment as rendered on a roadmap page, newest first.
type CommentEntry struct {
	ID         uint   `json:"id"`
	Content    string `json:"content"`
	DatePosted string `json:"date_posted"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
}

type CommentService interface {
	AddComment(ctx context.Context, userID uuid.UUID, roadmapID, content string) (*types.Comment, error)
	ListComments(ctx context.Context, roadmapID string) ([]CommentEntry, error)
}

type commentService struct {
	db          *gorm.DB
	log         *logger.Logger
	commentRepo repos.CommentRepo
	roadmapRepo repos.RoadmapRepo
	userRepo    repos.UserRepo
}

func NewCommentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	commentRepo repos.CommentRepo,
	roadmapRepo repos.RoadmapRepo,
	userRepo repos.UserRepo,
) CommentService {
	serviceLog := baseLog.With("service", "CommentService")
	return &commentService{
		db:          db,
		log:         serviceLog,
		commentRepo: commentRepo,
		roadmapRepo: roadmapRepo,
		userRepo:    userRepo,
	}
}

func (cs *commentService) AddComment(ctx context.Context, userID uuid.UUID, roadmapID, content string) (*types.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment content is required: %w", apperr.ErrValidation)
	}
	roadmap, err := cs.roadmapRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, fmt.Errorf("roadmap %q: %w", roadmapID, apperr.ErrNotFound)
	}

	comment := &types.Comment{
		Content:    content,
		DatePosted: time.Now().UTC(),
		UserID:     userID,
		RoadmapID:  roadmapID,
	}
	if _, err := cs.commentRepo.Create(ctx, nil, []*types.Comment{comment}); err != nil {
		cs.log.Error("AddComment failed", "error", err, "roadmap_id", roadmapID, "user_id", userID)
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (cs *commentService) ListComments(ctx context.Context, roadmapID string) ([]CommentEntry, error) {
	comments, err := cs.commentRepo.GetByRoadmapID(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	users := make(map[uuid.UUID]*types.User)
	entries := make([]CommentEntry, 0, len(comments))
	for _, c := range comments {
		author, ok := users[c.UserID]
		if !ok {
			author, err = cs.userRepo.GetByID(ctx, nil, c.UserID)
			if err != nil {
				return nil, fmt.Errorf("load comment author: %w", err)
			}
			users[c.UserID] = author
		}
		entry := CommentEntry{
			ID:         c.ID,
			Content:    c.Content,
			DatePosted: c.DatePosted.UTC().Format(time.RFC3339),
		}
		if author != nil {
			entry.Username = author.Username
			entry.Avatar = author.Avatar
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
