package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/types"
)

type RoadmapVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.RoadmapVersion) ([]*types.RoadmapVersion, error)
	MaxVersionNumber(ctx context.Context, tx *gorm.DB, roadmapID string) (int, error)
	GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) ([]*types.RoadmapVersion, error)
	GetByRoadmapAndNumber(ctx context.Context, tx *gorm.DB, roadmapID string, versionNumber int) (*types.RoadmapVersion, error)
}

type roadmapVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapVersionRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapVersionRepo {
	repoLog := baseLog.With("repo", "RoadmapVersionRepo")
	return &roadmapVersionRepo{db: db, log: repoLog}
}

func (r *roadmapVersionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.RoadmapVersion) ([]*types.RoadmapVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.RoadmapVersion{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapVersionRepo) MaxVersionNumber(ctx context.Context, tx *gorm.DB, roadmapID string) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var max *int
	if err := transaction.WithContext(ctx).
		Model(&types.RoadmapVersion{}).
		Where("roadmap_id = ?", roadmapID).
		Select("MAX(version_number)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *roadmapVersionRepo) GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) ([]*types.RoadmapVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.RoadmapVersion
	if err := transaction.WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Order("version_number DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapVersionRepo) GetByRoadmapAndNumber(ctx context.Context, tx *gorm.DB, roadmapID string, versionNumber int) (*types.RoadmapVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.RoadmapVersion
	if err := transaction.WithContext(ctx).
		Where("roadmap_id = ? AND version_number = ?", roadmapID, versionNumber).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
