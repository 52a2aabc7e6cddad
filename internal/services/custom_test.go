package services

import (
	"context"
	"errors"
	"testing"

	"github.com/devtrail/devtrail-backend/internal/apperr"
	"github.com/devtrail/devtrail-backend/internal/types"
)

func newCustomService(t *testing.T) (CustomRoadmapService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewCustomRoadmapService(env.db, env.log, env.roadmapRepo, env.nodeRepo, env.customRepo, env.customNodes)
	return svc, env
}

func TestCustomRoadmap_AddNodeAppendsAtEnd(t *testing.T) {
	svc, env := newCustomService(t)
	ctx := context.Background()
	owner := seedUser(t, env.db, "alice", false)

	roadmap, err := svc.Create(ctx, owner.ID, CustomRoadmapInput{Title: "My path"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var nodes []*types.CustomRoadmapNode
	for i := 0; i < 3; i++ {
		node, err := svc.AddNode(ctx, owner.ID, roadmap.ID, CustomNodeInput{Title: "n"})
		if err != nil {
			t.Fatalf("AddNode %d: %v", i, err)
		}
		nodes = append(nodes, node)
	}
	for i, node := range nodes {
		if node.Position != i {
			t.Fatalf("expected position %d, got %d", i, node.Position)
		}
	}
}

func TestCustomRoadmap_DeleteNodeClosesGap(t *testing.T) {
	svc, env := newCustomService(t)
	ctx := context.Background()
	owner := seedUser(t, env.db, "alice", false)

	roadmap, err := svc.Create(ctx, owner.ID, CustomRoadmapInput{Title: "My path"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	var ids []string
	for i := 0; i < 4; i++ {
		node, err := svc.AddNode(ctx, owner.ID, roadmap.ID, CustomNodeInput{Title: "n"})
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		ids = append(ids, node.ID)
	}

	// Drop the node at position 1; everything after moves down one.
	if err := svc.DeleteNode(ctx, owner.ID, roadmap.ID, ids[1]); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	_, remaining, err := svc.Get(ctx, owner.ID, roadmap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(remaining))
	}
	wantIDs := []string{ids[0], ids[2], ids[3]}
	for i, node := range remaining {
		if node.Position != i {
			t.Fatalf("node %d: expected position %d, got %d", i, i, node.Position)
		}
		if node.ID != wantIDs[i] {
			t.Fatalf("node %d: expected id %s, got %s", i, wantIDs[i], node.ID)
		}
	}
}

func TestCustomRoadmap_ReorderSkipsForeignNodes(t *testing.T) {
	svc, env := newCustomService(t)
	ctx := context.Background()
	owner := seedUser(t, env.db, "alice", false)

	roadmap, err := svc.Create(ctx, owner.ID, CustomRoadmapInput{Title: "Mine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	other, err := svc.Create(ctx, owner.ID, CustomRoadmapInput{Title: "Other"})
	if err != nil {
		t.Fatalf("Create other: %v", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		node, err := svc.AddNode(ctx, owner.ID, roadmap.ID, CustomNodeInput{Title: "n"})
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		ids = append(ids, node.ID)
	}
	foreign, err := svc.AddNode(ctx, owner.ID, other.ID, CustomNodeInput{Title: "foreign"})
	if err != nil {
		t.Fatalf("AddNode foreign: %v", err)
	}

	// Reversed order with a node from another roadmap spliced in. The
	// foreign id must be ignored without renumbering it.
	order := []string{ids[2], foreign.ID, ids[1], ids[0]}
	if err := svc.ReorderNodes(ctx, owner.ID, roadmap.ID, order); err != nil {
		t.Fatalf("ReorderNodes: %v", err)
	}

	_, nodes, err := svc.Get(ctx, owner.ID, roadmap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []string{ids[2], ids[1], ids[0]}
	for i, node := range nodes {
		if node.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], node.ID)
		}
	}

	var foreignRow types.CustomRoadmapNode
	if err := env.db.First(&foreignRow, "id = ?", foreign.ID).Error; err != nil {
		t.Fatalf("load foreign node: %v", err)
	}
	if foreignRow.Position != 0 || foreignRow.RoadmapID != other.ID {
		t.Fatalf("foreign node touched: %+v", foreignRow)
	}
}

func TestCustomRoadmap_ReorderOmittedNodeKeepsPosition(t *testing.T) {
	svc, env := newCustomService(t)
	ctx := context.Background()
	owner := seedUser(t, env.db, "alice", false)

	roadmap, err := svc.Create(ctx, owner.ID, CustomRoadmapInput{Title: "Mine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	var ids []string
	for i := 0; i < 3; i++ {
		node, err := svc.AddNode(ctx, owner.ID, roadmap.ID, CustomNodeInput{Title: "n"})
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		ids = append(ids, node.ID)
	}

	// Only two of the three nodes appear in the new order. The omitted
	// node keeps its old position, even when that collides with a
	// renumbered one. Documented behavior, not a bug to fix here.
	if err := svc.ReorderNodes(ctx, owner.ID, roadmap.ID, []string{ids[2], ids[0]}); err != nil {
		t.Fatalf("ReorderNodes: %v", err)
	}

	positions := map[string]int{}
	for _, id := range ids {
		var row types.CustomRoadmapNode
		if err := env.db.First(&row, "id = ?", id).Error; err != nil {
			t.Fatalf("load node %s: %v", id, err)
		}
		positions[id] = row.Position
	}
	if positions[ids[2]] != 0 || positions[ids[0]] != 1 {
		t.Fatalf("reordered nodes misplaced: %v", positions)
	}
	if positions[ids[1]] != 1 {
		t.Fatalf("omitted node should keep position 1, got %d", positions[ids[1]])
	}
	if positions[ids[0]] != positions[ids[1]] {
		t.Fatalf("expected duplicate position between %s and %s, got %v", ids[0], ids[1], positions)
	}
}

func TestCustomRoadmap_OwnershipEnforced(t *testing.T) {
	svc, env := newCustomService(t)
	ctx := context.Background()
	owner := seedUser(t, env.db, "alice", false)
	intruder := seedUser(t, env.db, "mallory", false)

	roadmap, err := svc.Create(ctx, owner.ID, CustomRoadmapInput{Title: "Private"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(ctx, intruder.ID, roadmap.ID, CustomRoadmapInput{Title: "Hijacked"}); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on update, got %v", err)
	}
	if err := svc.Delete(ctx, intruder.ID, roadmap.ID); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on delete, got %v", err)
	}
	// Private roadmaps are invisible to non-owners on read too.
	if _, _, err := svc.Get(ctx, intruder.ID, roadmap.ID); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on get, got %v", err)
	}
}

func TestCustomRoadmap_CloneCopiesNodes(t *testing.T) {
	svc, env := newCustomService(t)
	ctx := context.Background()
	owner := seedUser(t, env.db, "alice", false)
	seedRoadmap(t, env.db, "go", "programming", "go,backend", 3)

	clone, err := svc.Clone(ctx, owner.ID, "go", CloneOverrides{})
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if clone.Title != "My version of Roadmap go" {
		t.Fatalf("unexpected clone title %q", clone.Title)
	}
	if clone.ClonedFrom == nil || *clone.ClonedFrom != "go" {
		t.Fatalf("expected cloned_from=go, got %v", clone.ClonedFrom)
	}
	if clone.IsPublic {
		t.Fatalf("clones default to private")
	}

	_, nodes, err := svc.Get(ctx, owner.ID, clone.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 cloned nodes, got %d", len(nodes))
	}
	for i, node := range nodes {
		if node.Position != i {
			t.Fatalf("node %d: expected position %d, got %d", i, i, node.Position)
		}
	}

	if _, err := svc.Clone(ctx, owner.ID, "missing", CloneOverrides{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing source, got %v", err)
	}
}

func TestCustomRoadmap_LinkAddAndDelete(t *testing.T) {
	svc, env := newCustomService(t)
	ctx := context.Background()
	owner := seedUser(t, env.db, "alice", false)

	roadmap, err := svc.Create(ctx, owner.ID, CustomRoadmapInput{Title: "Mine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	node, err := svc.AddNode(ctx, owner.ID, roadmap.ID, CustomNodeInput{Title: "n"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	node, err = svc.AddLink(ctx, owner.ID, roadmap.ID, node.ID, types.ResourceLink{Title: "Docs", URL: "https://example.com", Type: "article"})
	if err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	node, err = svc.AddLink(ctx, owner.ID, roadmap.ID, node.ID, types.ResourceLink{Title: "Video", URL: "https://example.com/v", Type: "video"})
	if err != nil {
		t.Fatalf("AddLink 2: %v", err)
	}
	if links := node.LinkList(); len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}

	node, err = svc.DeleteLink(ctx, owner.ID, roadmap.ID, node.ID, 0)
	if err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	links := node.LinkList()
	if len(links) != 1 || links[0].Title != "Video" {
		t.Fatalf("expected the video link to remain, got %+v", links)
	}

	if _, err := svc.DeleteLink(ctx, owner.ID, roadmap.ID, node.ID, 5); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for out-of-range index, got %v", err)
	}
}

func TestCustomRoadmap_ListSplitsOwnAndPublic(t *testing.T) {
	svc, env := newCustomService(t)
	ctx := context.Background()
	alice := seedUser(t, env.db, "alice", false)
	bob := seedUser(t, env.db, "bob", false)

	if _, err := svc.Create(ctx, alice.ID, CustomRoadmapInput{Title: "Alice private"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, bob.ID, CustomRoadmapInput{Title: "Bob public", IsPublic: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, bob.ID, CustomRoadmapInput{Title: "Bob private"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	own, public, err := svc.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(own) != 1 || own[0].Title != "Alice private" {
		t.Fatalf("unexpected own list: %+v", own)
	}
	if len(public) != 1 || public[0].Title != "Bob public" {
		t.Fatalf("unexpected public list: %+v", public)
	}
}
