package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/types"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Comment) ([]*types.Comment, error)
	GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) ([]*types.Comment, error)
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	repoLog := baseLog.With("repo", "CommentRepo")
	return &commentRepo{db: db, log: repoLog}
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Comment) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Comment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *commentRepo) GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Comment
	if err := transaction.WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Order("date_posted DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
