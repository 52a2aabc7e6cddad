package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/types"
)

const recommendationLimit = 3

type RecommendationService interface {
	// Recommend suggests up to three roadmaps the user has not started,
	// preferring ones whose tags overlap the tags of roadmaps the user has
	// progress on. With spare slots (or no progress at all) it pads with
	// arbitrary unstarted roadmaps.
	Recommend(ctx context.Context, userID uuid.UUID) ([]RoadmapSummary, error)
}

type recommendationService struct {
	db           *gorm.DB
	log          *logger.Logger
	roadmapRepo  repos.RoadmapRepo
	progressRepo repos.UserProgressRepo
}

func NewRecommendationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	progressRepo repos.UserProgressRepo,
) RecommendationService {
	serviceLog := baseLog.With("service", "RecommendationService")
	return &recommendationService{
		db:           db,
		log:          serviceLog,
		roadmapRepo:  roadmapRepo,
		progressRepo: progressRepo,
	}
}

func (rs *recommendationService) Recommend(ctx context.Context, userID uuid.UUID) ([]RoadmapSummary, error) {
	progress, err := rs.progressRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	// Only roadmaps with at least one completed node feed the tag pool;
	// merely-started ones say nothing about the user's interests yet.
	progressedIDs := make([]string, 0, len(progress))
	seen := make(map[string]bool, len(progress))
	for _, p := range progress {
		if p.Completed && !seen[p.RoadmapID] {
			seen[p.RoadmapID] = true
			progressedIDs = append(progressedIDs, p.RoadmapID)
		}
	}

	var tags []string
	if len(progressedIDs) > 0 {
		progressed, err := rs.roadmapRepo.GetByIDs(ctx, nil, progressedIDs)
		if err != nil {
			return nil, fmt.Errorf("load progressed roadmaps: %w", err)
		}
		tagSeen := map[string]bool{}
		for _, r := range progressed {
			for _, tag := range r.TagList() {
				if !tagSeen[tag] {
					tagSeen[tag] = true
					tags = append(tags, tag)
				}
			}
		}
	}

	picked := make([]*types.Roadmap, 0, recommendationLimit)
	pickedIDs := make(map[string]bool, recommendationLimit)
	exclude := append([]string{}, progressedIDs...)
	for _, tag := range tags {
		if len(picked) >= recommendationLimit {
			break
		}
		matches, err := rs.roadmapRepo.FindByTagLike(ctx, nil, tag, exclude, recommendationLimit-len(picked))
		if err != nil {
			return nil, fmt.Errorf("match tag %q: %w", tag, err)
		}
		for _, m := range matches {
			if pickedIDs[m.ID] {
				continue
			}
			pickedIDs[m.ID] = true
			picked = append(picked, m)
			exclude = append(exclude, m.ID)
		}
	}

	if len(picked) < recommendationLimit {
		fillers, err := rs.roadmapRepo.FindExcluding(ctx, nil, exclude, recommendationLimit-len(picked))
		if err != nil {
			return nil, fmt.Errorf("fill recommendations: %w", err)
		}
		picked = append(picked, fillers...)
	}

	return summarize(picked), nil
}
