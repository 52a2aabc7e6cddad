package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/devtrail/devtrail-backend/internal/types"
)

func writeCatalog(t *testing.T, dir string) {
	t.Helper()
	index := `{
  "roadmaps": [
    {"id": "go", "title": "Go Developer", "description": "Learn Go", "category": "programming", "difficulty": "beginner", "tags": ["go", "backend"]},
    {"id": "rust", "title": "Rust Developer", "description": "Learn Rust", "category": "programming", "difficulty": "advanced", "tags": ["rust"]}
  ]
}`
	goNodes := `{
  "go-basics": {"title": "Basics", "description": "syntax", "links": [{"title": "Tour", "url": "https://example.com", "type": "article"}]},
  "go-concurrency": {"title": "Concurrency", "description": "goroutines", "links": []},
  "go-stdlib": {"title": "Stdlib", "description": "packages", "links": []}
}`
	for name, body := range map[string]string{
		"roadmaps.json": index,
		"go.json":       goNodes,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestImportCatalog_LoadsRoadmapsInDocumentOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := NewImporterService(env.db, env.log, env.roadmapRepo, env.nodeRepo)
	dir := t.TempDir()
	writeCatalog(t, dir)

	result, err := svc.ImportCatalog(context.Background(), dir)
	if err != nil {
		t.Fatalf("ImportCatalog: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 0 {
		t.Fatalf("expected 2 imported / 0 skipped, got %d/%d", result.Imported, result.Skipped)
	}

	var roadmap types.Roadmap
	if err := env.db.First(&roadmap, "id = ?", "go").Error; err != nil {
		t.Fatalf("load roadmap: %v", err)
	}
	if roadmap.Tags != "go,backend" {
		t.Fatalf("expected comma-joined tags, got %q", roadmap.Tags)
	}

	var nodes []types.RoadmapNode
	if err := env.db.Where("roadmap_id = ?", "go").Order("seq").Find(&nodes).Error; err != nil {
		t.Fatalf("load nodes: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	// Seq must follow the JSON file's key order.
	want := []string{"go-basics", "go-concurrency", "go-stdlib"}
	for i, node := range nodes {
		if node.ID != want[i] || node.Seq != i {
			t.Fatalf("node %d: expected %s/seq=%d, got %s/seq=%d", i, want[i], i, node.ID, node.Seq)
		}
	}
	if links := nodes[0].LinkList(); len(links) != 1 || links[0].Title != "Tour" {
		t.Fatalf("unexpected links on first node: %+v", links)
	}

	// The rust roadmap has no node file; it imports with zero nodes.
	var rustCount int64
	if err := env.db.Model(&types.RoadmapNode{}).Where("roadmap_id = ?", "rust").Count(&rustCount).Error; err != nil {
		t.Fatalf("count rust nodes: %v", err)
	}
	if rustCount != 0 {
		t.Fatalf("expected 0 rust nodes, got %d", rustCount)
	}
}

func TestImportCatalog_RerunSkipsExisting(t *testing.T) {
	env := newTestEnv(t)
	svc := NewImporterService(env.db, env.log, env.roadmapRepo, env.nodeRepo)
	dir := t.TempDir()
	writeCatalog(t, dir)

	if _, err := svc.ImportCatalog(context.Background(), dir); err != nil {
		t.Fatalf("first import: %v", err)
	}
	result, err := svc.ImportCatalog(context.Background(), dir)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 2 {
		t.Fatalf("expected 0 imported / 2 skipped, got %d/%d", result.Imported, result.Skipped)
	}

	var count int64
	if err := env.db.Model(&types.RoadmapNode{}).Count(&count).Error; err != nil {
		t.Fatalf("count nodes: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected node count unchanged at 3, got %d", count)
	}
}
