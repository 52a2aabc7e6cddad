package services

import (
	"context"
	"errors"
	"testing"

	"github.com/devtrail/devtrail-backend/internal/apperr"
	"github.com/devtrail/devtrail-backend/internal/types"
)

func newProgressService(t *testing.T) (ProgressService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewProgressService(env.db, env.log, env.roadmapRepo, env.nodeRepo, env.progressRepo)
	return svc, env
}

func TestSetProgress_CreatesThenUpdatesSingleRow(t *testing.T) {
	svc, env := newProgressService(t)
	ctx := context.Background()
	user := seedUser(t, env.db, "alice", false)
	seedRoadmap(t, env.db, "go", "programming", "go,backend", 3)

	completed, err := svc.SetProgress(ctx, user.ID, "go", "go-node-0", true)
	if err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if !completed {
		t.Fatalf("expected completed=true")
	}

	// Flipping back must update the same row, not insert a second one.
	completed, err = svc.SetProgress(ctx, user.ID, "go", "go-node-0", false)
	if err != nil {
		t.Fatalf("SetProgress uncomplete: %v", err)
	}
	if completed {
		t.Fatalf("expected completed=false")
	}

	var count int64
	if err := env.db.Model(&types.UserProgress{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 progress row, got %d", count)
	}

	var row types.UserProgress
	if err := env.db.First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Completed {
		t.Fatalf("expected row uncompleted")
	}
	if row.DateCompleted != nil {
		t.Fatalf("expected cleared completion date, got %v", row.DateCompleted)
	}
}

func TestSetProgress_UnknownRoadmapOrNode(t *testing.T) {
	svc, env := newProgressService(t)
	ctx := context.Background()
	user := seedUser(t, env.db, "bob", false)
	seedRoadmap(t, env.db, "go", "programming", "go", 2)

	if _, err := svc.SetProgress(ctx, user.ID, "missing", "go-node-0", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing roadmap, got %v", err)
	}
	if _, err := svc.SetProgress(ctx, user.ID, "go", "missing-node", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing node, got %v", err)
	}
}

func TestGetRoadmapProgress_MapsByNode(t *testing.T) {
	svc, env := newProgressService(t)
	ctx := context.Background()
	user := seedUser(t, env.db, "carol", false)
	seedRoadmap(t, env.db, "go", "programming", "go", 3)

	if _, err := svc.SetProgress(ctx, user.ID, "go", "go-node-1", true); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	progress, err := svc.GetRoadmapProgress(ctx, user.ID, "go")
	if err != nil {
		t.Fatalf("GetRoadmapProgress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(progress))
	}
	entry, ok := progress["go-node-1"]
	if !ok {
		t.Fatalf("expected entry for go-node-1")
	}
	if !entry.Completed || entry.DateCompleted == nil {
		t.Fatalf("expected completed entry with date, got %+v", entry)
	}
}

func TestGetDashboard_StatsAndOrdering(t *testing.T) {
	svc, env := newProgressService(t)
	ctx := context.Background()
	user := seedUser(t, env.db, "dave", false)
	seedRoadmap(t, env.db, "go", "programming", "go", 4)
	seedRoadmap(t, env.db, "rust", "programming", "rust", 2)
	seedRoadmap(t, env.db, "untouched", "design", "figma", 2)

	// go: 1/4 complete, rust: 2/2 complete.
	for _, n := range []struct{ roadmap, node string }{
		{"go", "go-node-0"},
		{"rust", "rust-node-0"},
		{"rust", "rust-node-1"},
	} {
		if _, err := svc.SetProgress(ctx, user.ID, n.roadmap, n.node, true); err != nil {
			t.Fatalf("SetProgress %s/%s: %v", n.roadmap, n.node, err)
		}
	}

	dashboard, err := svc.GetDashboard(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}

	// "untouched" has no progress and fewer than ten nodes, so it stays off
	// the dashboard.
	if len(dashboard.Roadmaps) != 2 {
		t.Fatalf("expected 2 dashboard roadmaps, got %d", len(dashboard.Roadmaps))
	}
	if dashboard.Roadmaps[0].Roadmap.ID != "rust" {
		t.Fatalf("expected rust (100%%) first, got %s", dashboard.Roadmaps[0].Roadmap.ID)
	}
	if dashboard.Roadmaps[0].Percentage != 100 || dashboard.Roadmaps[1].Percentage != 25 {
		t.Fatalf("unexpected percentages: %d, %d", dashboard.Roadmaps[0].Percentage, dashboard.Roadmaps[1].Percentage)
	}

	if dashboard.Stats.RoadmapsStarted != 2 {
		t.Fatalf("expected 2 started, got %d", dashboard.Stats.RoadmapsStarted)
	}
	if dashboard.Stats.TotalCompleted != 3 || dashboard.Stats.TotalAvailable != 6 {
		t.Fatalf("unexpected totals: %d/%d", dashboard.Stats.TotalCompleted, dashboard.Stats.TotalAvailable)
	}
	if dashboard.Stats.OverallPercentage != 50 {
		t.Fatalf("expected 50%%, got %d", dashboard.Stats.OverallPercentage)
	}
	if len(dashboard.RecentActivity) != 3 {
		t.Fatalf("expected 3 activity entries, got %d", len(dashboard.RecentActivity))
	}
}
