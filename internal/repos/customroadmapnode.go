package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/types"
)

type CustomRoadmapNodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.CustomRoadmapNode) ([]*types.CustomRoadmapNode, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.CustomRoadmapNode) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.CustomRoadmapNode, error)
	GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) ([]*types.CustomRoadmapNode, error)
	MaxPosition(ctx context.Context, tx *gorm.DB, roadmapID string) (int, error)
	UpdatePosition(ctx context.Context, tx *gorm.DB, id string, position int) error
	DecrementPositionsAbove(ctx context.Context, tx *gorm.DB, roadmapID string, position int) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	DeleteByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) error
}

type customRoadmapNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomRoadmapNodeRepo(db *gorm.DB, baseLog *logger.Logger) CustomRoadmapNodeRepo {
	repoLog := baseLog.With("repo", "CustomRoadmapNodeRepo")
	return &customRoadmapNodeRepo{db: db, log: repoLog}
}

func (r *customRoadmapNodeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CustomRoadmapNode) ([]*types.CustomRoadmapNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.CustomRoadmapNode{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *customRoadmapNodeRepo) Save(ctx context.Context, tx *gorm.DB, row *types.CustomRoadmapNode) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *customRoadmapNodeRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.CustomRoadmapNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CustomRoadmapNode
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

func (r *customRoadmapNodeRepo) GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) ([]*types.CustomRoadmapNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CustomRoadmapNode
	if err := transaction.WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Order("position").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MaxPosition returns -1 when the roadmap has no nodes, so the next append
// position is always MaxPosition+1.
func (r *customRoadmapNodeRepo) MaxPosition(ctx context.Context, tx *gorm.DB, roadmapID string) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var max *int
	if err := transaction.WithContext(ctx).
		Model(&types.CustomRoadmapNode{}).
		Where("roadmap_id = ?", roadmapID).
		Select("MAX(position)").
		Scan(&max).Error; err != nil {
		return -1, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

func (r *customRoadmapNodeRepo) UpdatePosition(ctx context.Context, tx *gorm.DB, id string, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.CustomRoadmapNode{}).
		Where("id = ?", id).
		Update("position", position).Error; err != nil {
		return err
	}
	return nil
}

func (r *customRoadmapNodeRepo) DecrementPositionsAbove(ctx context.Context, tx *gorm.DB, roadmapID string, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.CustomRoadmapNode{}).
		Where("roadmap_id = ? AND position > ?", roadmapID, position).
		Update("position", gorm.Expr("position - 1")).Error; err != nil {
		return err
	}
	return nil
}

func (r *customRoadmapNodeRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.CustomRoadmapNode{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *customRoadmapNodeRepo) DeleteByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Delete(&types.CustomRoadmapNode{}).Error; err != nil {
		return err
	}
	return nil
}
