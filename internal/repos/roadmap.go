package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/types"
)

type RoadmapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Roadmap) ([]*types.Roadmap, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Roadmap, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*types.Roadmap, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Roadmap, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error
	Search(ctx context.Context, tx *gorm.DB, query string) ([]*types.Roadmap, error)
	FindByCategory(ctx context.Context, tx *gorm.DB, category string, excludeIDs []string, limit int) ([]*types.Roadmap, error)
	FindByTagLike(ctx context.Context, tx *gorm.DB, tag string, excludeIDs []string, limit int) ([]*types.Roadmap, error)
	FindExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []string, limit int) ([]*types.Roadmap, error)
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	repoLog := baseLog.With("repo", "RoadmapRepo")
	return &roadmapRepo{db: db, log: repoLog}
}

func (r *roadmapRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Roadmap) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Roadmap{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Roadmap
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

func (r *roadmapRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Roadmap
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Roadmap
	if err := transaction.WithContext(ctx).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Roadmap{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *roadmapRepo) Search(ctx context.Context, tx *gorm.DB, query string) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Roadmap
	if query == "" {
		return results, nil
	}

	pattern := fmt.Sprintf("%%%s%%", query)
	if err := transaction.WithContext(ctx).
		Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", pattern, pattern, pattern).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapRepo) FindByCategory(ctx context.Context, tx *gorm.DB, category string, excludeIDs []string, limit int) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Where("category = ?", category)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.Roadmap
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindByTagLike matches the tags column by substring. This deliberately
// over-matches (tag "go" also hits "algorithms"); the recommendation paths
// depend on exactly this behavior.
func (r *roadmapRepo) FindByTagLike(ctx context.Context, tx *gorm.DB, tag string, excludeIDs []string, limit int) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if tag == "" {
		return []*types.Roadmap{}, nil
	}

	q := transaction.WithContext(ctx).Where("tags LIKE ?", fmt.Sprintf("%%%s%%", tag))
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.Roadmap
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapRepo) FindExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []string, limit int) ([]*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Roadmap{})
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.Roadmap
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
