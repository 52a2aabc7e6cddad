package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/types"
)

type CustomRoadmapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.CustomRoadmap) ([]*types.CustomRoadmap, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.CustomRoadmap, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CustomRoadmap, error)
	GetPublicExcludingUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CustomRoadmap, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type customRoadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) CustomRoadmapRepo {
	repoLog := baseLog.With("repo", "CustomRoadmapRepo")
	return &customRoadmapRepo{db: db, log: repoLog}
}

func (r *customRoadmapRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CustomRoadmap) ([]*types.CustomRoadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.CustomRoadmap{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *customRoadmapRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.CustomRoadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CustomRoadmap
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

func (r *customRoadmapRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CustomRoadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CustomRoadmap
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *customRoadmapRepo) GetPublicExcludingUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CustomRoadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CustomRoadmap
	if err := transaction.WithContext(ctx).
		Where("is_public = ? AND user_id <> ?", true, userID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *customRoadmapRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.CustomRoadmap{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *customRoadmapRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.CustomRoadmap{}).Error; err != nil {
		return err
	}
	return nil
}
