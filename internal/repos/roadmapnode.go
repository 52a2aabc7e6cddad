package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/types"
)

type RoadmapNodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.RoadmapNode) ([]*types.RoadmapNode, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.RoadmapNode, error)
	GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) ([]*types.RoadmapNode, error)
	GetPage(ctx context.Context, tx *gorm.DB, roadmapID string, offset, limit int) ([]*types.RoadmapNode, error)
	CountByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) (int64, error)
	DeleteByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) error
}

type roadmapNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapNodeRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapNodeRepo {
	repoLog := baseLog.With("repo", "RoadmapNodeRepo")
	return &roadmapNodeRepo{db: db, log: repoLog}
}

func (r *roadmapNodeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.RoadmapNode) ([]*types.RoadmapNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.RoadmapNode{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapNodeRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.RoadmapNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.RoadmapNode
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *roadmapNodeRepo) GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) ([]*types.RoadmapNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.RoadmapNode
	if err := transaction.WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Order("seq").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapNodeRepo) GetPage(ctx context.Context, tx *gorm.DB, roadmapID string, offset, limit int) ([]*types.RoadmapNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.RoadmapNode
	if err := transaction.WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Order("seq").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapNodeRepo) CountByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.RoadmapNode{}).
		Where("roadmap_id = ?", roadmapID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *roadmapNodeRepo) DeleteByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Delete(&types.RoadmapNode{}).Error; err != nil {
		return err
	}
	return nil
}
