package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/apperr"
	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/types"
)

// NodeProgress is the per-node progress shape returned to clients.
type NodeProgress struct {
	Completed     bool    `json:"completed"`
	DateCompleted *string `json:"date_completed"`
}

// RoadmapProgressEntry summarizes one roadmap on the dashboard.
type RoadmapProgressEntry struct {
	Roadmap        *types.Roadmap `json:"roadmap"`
	TotalNodes     int            `json:"total_nodes"`
	CompletedNodes int            `json:"completed_nodes"`
	Percentage     int            `json:"percentage"`
}

// ActivityEntry is one recently-completed node on the dashboard.
type ActivityEntry struct {
	Roadmap       *types.Roadmap     `json:"roadmap"`
	Node          *types.RoadmapNode `json:"node"`
	DateCompleted time.Time          `json:"date_completed"`
}

// DashboardStats aggregates progress across all roadmaps.
type DashboardStats struct {
	RoadmapsStarted   int `json:"roadmaps_started"`
	TotalCompleted    int `json:"total_completed"`
	TotalAvailable    int `json:"total_available"`
	OverallPercentage int `json:"overall_percentage"`
}

// Dashboard bundles everything the dashboard page needs.
type Dashboard struct {
	Roadmaps       []RoadmapProgressEntry `json:"roadmaps"`
	RecentActivity []ActivityEntry        `json:"recent_activity"`
	Stats          DashboardStats         `json:"stats"`
}

type ProgressService interface {
	SetProgress(ctx context.Context, userID uuid.UUID, roadmapID, nodeID string, completed bool) (bool, error)
	GetProgress(ctx context.Context, userID uuid.UUID) (map[string]map[string]NodeProgress, error)
	GetRoadmapProgress(ctx context.Context, userID uuid.UUID, roadmapID string) (map[string]NodeProgress, error)
	GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	roadmapRepo  repos.RoadmapRepo
	nodeRepo     repos.RoadmapNodeRepo
	progressRepo repos.UserProgressRepo
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	nodeRepo repos.RoadmapNodeRepo,
	progressRepo repos.UserProgressRepo,
) ProgressService {
	serviceLog := baseLog.With("service", "ProgressService")
	return &progressService{
		db:           db,
		log:          serviceLog,
		roadmapRepo:  roadmapRepo,
		nodeRepo:     nodeRepo,
		progressRepo: progressRepo,
	}
}

// SetProgress upserts the (user, roadmap, node) row. The completion timestamp
// is rewritten on every call: set to now when completed, cleared otherwise,
// regardless of the previous value.
func (ps *progressService) SetProgress(ctx context.Context, userID uuid.UUID, roadmapID, nodeID string, completed bool) (bool, error) {
	roadmap, err := ps.roadmapRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return false, fmt.Errorf("load roadmap: %w", err)
	}
	if roadmap == nil {
		return false, fmt.Errorf("roadmap %q: %w", roadmapID, apperr.ErrNotFound)
	}
	node, err := ps.nodeRepo.GetByID(ctx, nil, nodeID)
	if err != nil {
		return false, fmt.Errorf("load node: %w", err)
	}
	if node == nil {
		return false, fmt.Errorf("node %q: %w", nodeID, apperr.ErrNotFound)
	}

	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := ps.progressRepo.GetByUserRoadmapNode(ctx, tx, userID, roadmapID, nodeID)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		var dateCompleted *time.Time
		if completed {
			now := time.Now().UTC()
			dateCompleted = &now
		}

		if row == nil {
			row = &types.UserProgress{
				UserID:        userID,
				RoadmapID:     roadmapID,
				NodeID:        nodeID,
				Completed:     completed,
				DateCompleted: dateCompleted,
			}
			if _, err := ps.progressRepo.Create(ctx, tx, []*types.UserProgress{row}); err != nil {
				return fmt.Errorf("create progress: %w", err)
			}
			return nil
		}

		row.Completed = completed
		row.DateCompleted = dateCompleted
		if err := ps.progressRepo.Save(ctx, tx, row); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		return nil
	})
	if err != nil {
		ps.log.Error("SetProgress failed", "error", err, "user_id", userID, "roadmap_id", roadmapID, "node_id", nodeID)
		return false, err
	}
	return completed, nil
}

func (ps *progressService) GetProgress(ctx context.Context, userID uuid.UUID) (map[string]map[string]NodeProgress, error) {
	rows, err := ps.progressRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	result := map[string]map[string]NodeProgress{}
	for _, row := range rows {
		byNode, ok := result[row.RoadmapID]
		if !ok {
			byNode = map[string]NodeProgress{}
			result[row.RoadmapID] = byNode
		}
		byNode[row.NodeID] = toNodeProgress(row)
	}
	return result, nil
}

func (ps *progressService) GetRoadmapProgress(ctx context.Context, userID uuid.UUID, roadmapID string) (map[string]NodeProgress, error) {
	rows, err := ps.progressRepo.GetByUserAndRoadmapID(ctx, nil, userID, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	result := map[string]NodeProgress{}
	for _, row := range rows {
		result[row.NodeID] = toNodeProgress(row)
	}
	return result, nil
}

func (ps *progressService) GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	roadmaps, err := ps.roadmapRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	progressRows, err := ps.progressRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	completedByRoadmap := map[string]int{}
	for _, row := range progressRows {
		if row.Completed {
			completedByRoadmap[row.RoadmapID]++
		}
	}

	var entries []RoadmapProgressEntry
	for _, rm := range roadmaps {
		total, err := ps.nodeRepo.CountByRoadmapID(ctx, nil, rm.ID)
		if err != nil {
			return nil, fmt.Errorf("count nodes: %w", err)
		}
		completed := completedByRoadmap[rm.ID]
		percentage := 0
		if total > 0 {
			percentage = int(float64(completed) / float64(total) * 100)
		}
		// Only surface roadmaps the user started, or large enough to suggest.
		if completed > 0 || total >= 10 {
			entries = append(entries, RoadmapProgressEntry{
				Roadmap:        rm,
				TotalNodes:     int(total),
				CompletedNodes: completed,
				Percentage:     percentage,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})

	recent, err := ps.progressRepo.GetCompletedByUserID(ctx, nil, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("load recent activity: %w", err)
	}
	var activity []ActivityEntry
	for _, row := range recent {
		if row.DateCompleted == nil {
			continue
		}
		rm, err := ps.roadmapRepo.GetByID(ctx, nil, row.RoadmapID)
		if err != nil {
			return nil, fmt.Errorf("load roadmap: %w", err)
		}
		node, err := ps.nodeRepo.GetByID(ctx, nil, row.NodeID)
		if err != nil {
			return nil, fmt.Errorf("load node: %w", err)
		}
		if rm == nil || node == nil {
			continue
		}
		activity = append(activity, ActivityEntry{
			Roadmap:       rm,
			Node:          node,
			DateCompleted: *row.DateCompleted,
		})
	}

	stats := DashboardStats{}
	for _, e := range entries {
		if e.CompletedNodes > 0 {
			stats.RoadmapsStarted++
		}
		stats.TotalCompleted += e.CompletedNodes
		stats.TotalAvailable += e.TotalNodes
	}
	if stats.TotalAvailable > 0 {
		stats.OverallPercentage = int(float64(stats.TotalCompleted) / float64(stats.TotalAvailable) * 100)
	}

	return &Dashboard{
		Roadmaps:       entries,
		RecentActivity: activity,
		Stats:          stats,
	}, nil
}

func toNodeProgress(row *types.UserProgress) NodeProgress {
	np := NodeProgress{Completed: row.Completed}
	if row.DateCompleted != nil {
		iso := row.DateCompleted.UTC().Format(time.RFC3339)
		np.DateCompleted = &iso
	}
	return np
}
