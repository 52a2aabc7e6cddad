package services

import (
	"context"
	"errors"
	"testing"

	"github.com/devtrail/devtrail-backend/internal/apperr"
)

func newRoadmapTestService(t *testing.T) (RoadmapService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewRoadmapService(env.db, env.log, env.roadmapRepo, env.nodeRepo, env.progressRepo)
	return svc, env
}

func TestRoadmapGet_DetailShape(t *testing.T) {
	svc, env := newRoadmapTestService(t)
	ctx := context.Background()
	seedRoadmap(t, env.db, "go", "programming", "go,backend", 3)

	detail, err := svc.Get(ctx, "go")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.ID != "go" || detail.Title != "Roadmap go" {
		t.Fatalf("unexpected scalars: %+v", detail.RoadmapSummary)
	}
	if len(detail.Tags) != 2 || detail.Tags[0] != "go" || detail.Tags[1] != "backend" {
		t.Fatalf("tags must come back as a list: %#v", detail.Tags)
	}
	if len(detail.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(detail.Nodes))
	}
	if len(detail.NodeOrder) != 3 || detail.NodeOrder[0] != "go-node-0" || detail.NodeOrder[2] != "go-node-2" {
		t.Fatalf("unexpected node order: %v", detail.NodeOrder)
	}
	node, ok := detail.Nodes["go-node-1"]
	if !ok {
		t.Fatalf("missing node go-node-1")
	}
	if node.Title != "Node 1" {
		t.Fatalf("unexpected node title %q", node.Title)
	}
	if node.Links == nil {
		t.Fatalf("links must decode to an empty slice, not nil")
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoadmapListNodes_Pagination(t *testing.T) {
	svc, env := newRoadmapTestService(t)
	ctx := context.Background()
	seedRoadmap(t, env.db, "go", "programming", "go", 7)

	page, err := svc.ListNodes(ctx, nil, "go", 0, 5)
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	if len(page.Nodes) != 5 || !page.HasMore {
		t.Fatalf("expected full first page with has_more, got %d/%v", len(page.Nodes), page.HasMore)
	}

	page, err = svc.ListNodes(ctx, nil, "go", 5, 5)
	if err != nil {
		t.Fatalf("ListNodes page 2: %v", err)
	}
	if len(page.Nodes) != 2 || page.HasMore {
		t.Fatalf("expected short last page without has_more, got %d/%v", len(page.Nodes), page.HasMore)
	}
	if page.Nodes[0].Title != "Node 5" {
		t.Fatalf("expected Node 5 first on page 2, got %q", page.Nodes[0].Title)
	}

	// A total that divides evenly by the limit reports a trailing has_more:
	// the caller discovers the end on the next, empty page.
	page, err = svc.ListNodes(ctx, nil, "go", 0, 7)
	if err != nil {
		t.Fatalf("ListNodes exact: %v", err)
	}
	if !page.HasMore {
		t.Fatalf("expected has_more on exact-limit page")
	}
}

func TestRoadmapListNodes_ViewerCompletion(t *testing.T) {
	svc, env := newRoadmapTestService(t)
	prog := NewProgressService(env.db, env.log, env.roadmapRepo, env.nodeRepo, env.progressRepo)
	ctx := context.Background()
	seedRoadmap(t, env.db, "go", "programming", "go", 3)
	user := seedUser(t, env.db, "alice", false)

	if _, err := prog.SetProgress(ctx, user.ID, "go", "go-node-1", true); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	// A row flipped back to incomplete must not read as completed.
	if _, err := prog.SetProgress(ctx, user.ID, "go", "go-node-2", true); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if _, err := prog.SetProgress(ctx, user.ID, "go", "go-node-2", false); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	page, err := svc.ListNodes(ctx, &user.ID, "go", 0, 5)
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	if len(page.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(page.Nodes))
	}
	byID := map[string]NodePageEntry{}
	for _, n := range page.Nodes {
		byID[n.ID] = n
	}
	if len(byID) != 3 {
		t.Fatalf("every page entry needs a distinct id: %+v", page.Nodes)
	}
	if !byID["go-node-1"].Completed {
		t.Fatalf("go-node-1 should be completed")
	}
	if byID["go-node-0"].Completed || byID["go-node-2"].Completed {
		t.Fatalf("unexpected completion flags: %+v", page.Nodes)
	}

	// Anonymous viewers see everything as not completed.
	page, err = svc.ListNodes(ctx, nil, "go", 0, 5)
	if err != nil {
		t.Fatalf("ListNodes anonymous: %v", err)
	}
	for _, n := range page.Nodes {
		if n.Completed {
			t.Fatalf("anonymous viewer saw %s completed", n.ID)
		}
	}
}

func TestRoadmapSearch(t *testing.T) {
	svc, env := newRoadmapTestService(t)
	ctx := context.Background()
	seedRoadmap(t, env.db, "go", "programming", "golang,backend", 1)
	seedRoadmap(t, env.db, "design", "design", "figma", 1)

	results, err := svc.Search(ctx, "golang")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "go" {
		t.Fatalf("unexpected results: %+v", results)
	}

	results, err = svc.Search(ctx, "")
	if err != nil {
		t.Fatalf("Search empty: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("empty query must return nothing, got %d", len(results))
	}
}

func TestRoadmapRelated(t *testing.T) {
	svc, env := newRoadmapTestService(t)
	ctx := context.Background()
	seedRoadmap(t, env.db, "go", "programming", "go,backend", 1)
	seedRoadmap(t, env.db, "rust", "programming", "rust", 1)
	seedRoadmap(t, env.db, "node", "programming", "backend", 1)
	seedRoadmap(t, env.db, "figma", "design", "ui", 1)

	related, err := svc.Related(ctx, "go")
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	for _, r := range related {
		if r.ID == "go" {
			t.Fatalf("roadmap related to itself")
		}
	}
	// Both same-category roadmaps should be in there.
	found := map[string]bool{}
	for _, r := range related {
		found[r.ID] = true
	}
	if !found["rust"] || !found["node"] {
		t.Fatalf("expected same-category matches, got %+v", related)
	}
}
