package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/types"
)

type UserProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.UserProgress) ([]*types.UserProgress, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.UserProgress) error
	GetByUserRoadmapNode(ctx context.Context, tx *gorm.DB, userID uuid.UUID, roadmapID, nodeID string) (*types.UserProgress, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserProgress, error)
	GetByUserAndRoadmapID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, roadmapID string) ([]*types.UserProgress, error)
	GetByUserAndNodeIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, roadmapID string, nodeIDs []string) ([]*types.UserProgress, error)
	GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UserProgress, error)
}

type userProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	repoLog := baseLog.With("repo", "UserProgressRepo")
	return &userProgressRepo{db: db, log: repoLog}
}

func (r *userProgressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.UserProgress) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.UserProgress{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userProgressRepo) Save(ctx context.Context, tx *gorm.DB, row *types.UserProgress) error {
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

func (r *userProgressRepo) GetByUserRoadmapNode(ctx context.Context, tx *gorm.DB, userID uuid.UUID, roadmapID, nodeID string) (*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND roadmap_id = ? AND node_id = ?", userID, roadmapID, nodeID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *userProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserProgress
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userProgressRepo) GetByUserAndRoadmapID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, roadmapID string) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND roadmap_id = ?", userID, roadmapID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userProgressRepo) GetByUserAndNodeIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, roadmapID string, nodeIDs []string) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserProgress
	if len(nodeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND roadmap_id = ? AND node_id IN ?", userID, roadmapID, nodeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userProgressRepo) GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UserProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ? AND completed = ?", userID, true).
		Order("date_completed DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.UserProgress
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
