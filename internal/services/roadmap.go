package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/apperr"
	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/types"
)

// RoadmapSummary is the catalog listing shape: scalars only, no nodes.
type RoadmapSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Tags        []string `json:"tags"`
}

// NodeDetail is one node as rendered on a roadmap detail page.
type NodeDetail struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Links       []types.ResourceLink `json:"links"`
}

// NodePageEntry is one node on a paginated listing. Unlike the detail map
// it carries the node id explicitly plus the viewer's completion state.
type NodePageEntry struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Links       []types.ResourceLink `json:"links"`
	Completed   bool                 `json:"completed"`
}

// RoadmapDetail is the full detail view: roadmap scalars plus a node map
// keyed by node id. Display order lives in NodeOrder since JSON objects
// carry no ordering.
type RoadmapDetail struct {
	RoadmapSummary
	Nodes     map[string]NodeDetail `json:"nodes"`
	NodeOrder []string              `json:"node_order"`
}

// NodePage is one page of nodes for incremental rendering. HasMore is true
// exactly when the page came back full, so the last page can report a false
// positive when the total is a multiple of the page size.
type NodePage struct {
	Nodes   []NodePageEntry `json:"nodes"`
	HasMore bool            `json:"has_more"`
}

type RoadmapService interface {
	List(ctx context.Context) ([]RoadmapSummary, error)
	Get(ctx context.Context, roadmapID string) (*RoadmapDetail, error)
	// ListNodes pages through a roadmap's nodes. A non-nil viewerID marks
	// each node with that user's completion state; anonymous viewers get
	// completed=false throughout.
	ListNodes(ctx context.Context, viewerID *uuid.UUID, roadmapID string, offset, limit int) (*NodePage, error)
	Search(ctx context.Context, query string) ([]RoadmapSummary, error)
	// Related finds up to five roadmaps near the given one: same category
	// first, then tag overlap, then arbitrary fillers when fewer than three
	// were found.
	Related(ctx context.Context, roadmapID string) ([]RoadmapSummary, error)
}

type roadmapService struct {
	db           *gorm.DB
	log          *logger.Logger
	roadmapRepo  repos.RoadmapRepo
	nodeRepo     repos.RoadmapNodeRepo
	progressRepo repos.UserProgressRepo
}

func NewRoadmapService(
	db *gorm.DB,
	baseLog *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	nodeRepo repos.RoadmapNodeRepo,
	progressRepo repos.UserProgressRepo,
) RoadmapService {
	serviceLog := baseLog.With("service", "RoadmapService")
	return &roadmapService{
		db:           db,
		log:          serviceLog,
		roadmapRepo:  roadmapRepo,
		nodeRepo:     nodeRepo,
		progressRepo: progressRepo,
	}
}

func (rs *roadmapService) List(ctx context.Context) ([]RoadmapSummary, error) {
	roadmaps, err := rs.roadmapRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	return summarize(roadmaps), nil
}

func (rs *roadmapService) Get(ctx context.Context, roadmapID string) (*RoadmapDetail, error) {
	roadmap, err := rs.roadmapRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, fmt.Errorf("roadmap %q: %w", roadmapID, apperr.ErrNotFound)
	}

	nodes, err := rs.nodeRepo.GetByRoadmapID(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}

	detail := &RoadmapDetail{
		RoadmapSummary: toSummary(roadmap),
		Nodes:          make(map[string]NodeDetail, len(nodes)),
		NodeOrder:      make([]string, 0, len(nodes)),
	}
	for _, node := range nodes {
		detail.Nodes[node.ID] = NodeDetail{
			Title:       node.Title,
			Description: node.Description,
			Links:       node.LinkList(),
		}
		detail.NodeOrder = append(detail.NodeOrder, node.ID)
	}
	return detail, nil
}

func (rs *roadmapService) ListNodes(ctx context.Context, viewerID *uuid.UUID, roadmapID string, offset, limit int) (*NodePage, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 5
	}

	roadmap, err := rs.roadmapRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, fmt.Errorf("roadmap %q: %w", roadmapID, apperr.ErrNotFound)
	}

	nodes, err := rs.nodeRepo.GetPage(ctx, nil, roadmapID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("load node page: %w", err)
	}

	completed := map[string]bool{}
	if viewerID != nil && len(nodes) > 0 {
		nodeIDs := make([]string, 0, len(nodes))
		for _, node := range nodes {
			nodeIDs = append(nodeIDs, node.ID)
		}
		progress, err := rs.progressRepo.GetByUserAndNodeIDs(ctx, nil, *viewerID, roadmapID, nodeIDs)
		if err != nil {
			return nil, fmt.Errorf("load viewer progress: %w", err)
		}
		for _, p := range progress {
			if p.Completed {
				completed[p.NodeID] = true
			}
		}
	}

	page := &NodePage{
		Nodes:   make([]NodePageEntry, 0, len(nodes)),
		HasMore: len(nodes) == limit,
	}
	for _, node := range nodes {
		page.Nodes = append(page.Nodes, NodePageEntry{
			ID:          node.ID,
			Title:       node.Title,
			Description: node.Description,
			Links:       node.LinkList(),
			Completed:   completed[node.ID],
		})
	}
	return page, nil
}

func (rs *roadmapService) Search(ctx context.Context, query string) ([]RoadmapSummary, error) {
	if query == "" {
		return []RoadmapSummary{}, nil
	}
	roadmaps, err := rs.roadmapRepo.Search(ctx, nil, query)
	if err != nil {
		return nil, fmt.Errorf("search roadmaps: %w", err)
	}
	return summarize(roadmaps), nil
}

const relatedLimit = 5

func (rs *roadmapService) Related(ctx context.Context, roadmapID string) ([]RoadmapSummary, error) {
	roadmap, err := rs.roadmapRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, fmt.Errorf("roadmap %q: %w", roadmapID, apperr.ErrNotFound)
	}

	related := make([]*types.Roadmap, 0, relatedLimit)
	seen := map[string]bool{roadmapID: true}

	byCategory, err := rs.roadmapRepo.FindByCategory(ctx, nil, roadmap.Category, []string{roadmapID}, relatedLimit)
	if err != nil {
		return nil, fmt.Errorf("find by category: %w", err)
	}
	for _, m := range byCategory {
		seen[m.ID] = true
		related = append(related, m)
	}

	if len(related) < relatedLimit {
		for _, tag := range roadmap.TagList() {
			if len(related) >= relatedLimit {
				break
			}
			matches, err := rs.roadmapRepo.FindByTagLike(ctx, nil, tag, []string{roadmapID}, relatedLimit)
			if err != nil {
				return nil, fmt.Errorf("find by tag %q: %w", tag, err)
			}
			for _, m := range matches {
				if len(related) >= relatedLimit {
					break
				}
				if seen[m.ID] {
					continue
				}
				seen[m.ID] = true
				related = append(related, m)
			}
		}
	}

	// Below three hits the page looks empty, so pad with whatever exists.
	if len(related) < 3 {
		exclude := make([]string, 0, len(seen))
		for id := range seen {
			exclude = append(exclude, id)
		}
		fillers, err := rs.roadmapRepo.FindExcluding(ctx, nil, exclude, relatedLimit-len(related))
		if err != nil {
			return nil, fmt.Errorf("fill related: %w", err)
		}
		related = append(related, fillers...)
	}

	return summarize(related), nil
}

func toSummary(r *types.Roadmap) RoadmapSummary {
	tags := r.TagList()
	if tags == nil {
		tags = []string{}
	}
	return RoadmapSummary{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Difficulty:  r.Difficulty,
		Tags:        tags,
	}
}

func summarize(roadmaps []*types.Roadmap) []RoadmapSummary {
	out := make([]RoadmapSummary, 0, len(roadmaps))
	for _, r := range roadmaps {
		out = append(out, toSummary(r))
	}
	return out
}
