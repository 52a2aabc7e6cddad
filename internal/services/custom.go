package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/apperr"
	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/types"
)

// CustomRoadmapInput carries the user-editable scalar fields of a custom
// roadmap. Tags are stored exactly as submitted.
type CustomRoadmapInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Tags        string `json:"tags"`
	IsPublic    bool   `json:"is_public"`
}

// CloneOverrides optionally replaces source fields during a clone. Nil
// pointers mean "copy from the source".
type CloneOverrides struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Difficulty  *string `json:"difficulty"`
	Tags        *string `json:"tags"`
	IsPublic    *bool   `json:"is_public"`
}

// CustomNodeInput carries the editable fields of a custom roadmap node.
type CustomNodeInput struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Links       []types.ResourceLink `json:"links"`
}

type CustomRoadmapService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CustomRoadmapInput) (*types.CustomRoadmap, error)
	Update(ctx context.Context, ownerID uuid.UUID, roadmapID string, in CustomRoadmapInput) (*types.CustomRoadmap, error)
	Delete(ctx context.Context, ownerID uuid.UUID, roadmapID string) error
	Get(ctx context.Context, principal uuid.UUID, roadmapID string) (*types.CustomRoadmap, []*types.CustomRoadmapNode, error)
	ListForUser(ctx context.Context, userID uuid.UUID) (own []*types.CustomRoadmap, public []*types.CustomRoadmap, err error)
	Clone(ctx context.Context, ownerID uuid.UUID, sourceRoadmapID string, overrides CloneOverrides) (*types.CustomRoadmap, error)
	AddNode(ctx context.Context, ownerID uuid.UUID, roadmapID string, in CustomNodeInput) (*types.CustomRoadmapNode, error)
	UpdateNode(ctx context.Context, ownerID uuid.UUID, roadmapID, nodeID string, in CustomNodeInput) (*types.CustomRoadmapNode, error)
	DeleteNode(ctx context.Context, ownerID uuid.UUID, roadmapID, nodeID string) error
	ReorderNodes(ctx context.Context, ownerID uuid.UUID, roadmapID string, orderedNodeIDs []string) error
	AddLink(ctx context.Context, ownerID uuid.UUID, roadmapID, nodeID string, link types.ResourceLink) (*types.CustomRoadmapNode, error)
	DeleteLink(ctx context.Context, ownerID uuid.UUID, roadmapID, nodeID string, linkIndex int) (*types.CustomRoadmapNode, error)
}

type customRoadmapService struct {
	db          *gorm.DB
	log         *logger.Logger
	roadmapRepo repos.RoadmapRepo
	sourceNodes repos.RoadmapNodeRepo
	customRepo  repos.CustomRoadmapRepo
	nodeRepo    repos.CustomRoadmapNodeRepo
}

func NewCustomRoadmapService(
	db *gorm.DB,
	baseLog *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	sourceNodes repos.RoadmapNodeRepo,
	customRepo repos.CustomRoadmapRepo,
	nodeRepo repos.CustomRoadmapNodeRepo,
) CustomRoadmapService {
	serviceLog := baseLog.With("service", "CustomRoadmapService")
	return &customRoadmapService{
		db:          db,
		log:         serviceLog,
		roadmapRepo: roadmapRepo,
		sourceNodes: sourceNodes,
		customRepo:  customRepo,
		nodeRepo:    nodeRepo,
	}
}

func (cs *customRoadmapService) Create(ctx context.Context, ownerID uuid.UUID, in CustomRoadmapInput) (*types.CustomRoadmap, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperr.ErrValidation)
	}

	now := time.Now().UTC()
	roadmap := &types.CustomRoadmap{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Difficulty:  in.Difficulty,
		Tags:        in.Tags,
		IsPublic:    in.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      ownerID,
	}
	if _, err := cs.customRepo.Create(ctx, nil, []*types.CustomRoadmap{roadmap}); err != nil {
		cs.log.Error("Create failed", "error", err, "user_id", ownerID)
		return nil, fmt.Errorf("create custom roadmap: %w", err)
	}
	return roadmap, nil
}

func (cs *customRoadmapService) Update(ctx context.Context, ownerID uuid.UUID, roadmapID string, in CustomRoadmapInput) (*types.CustomRoadmap, error) {
	roadmap, err := cs.requireOwned(ctx, nil, ownerID, roadmapID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"difficulty":  in.Difficulty,
		"tags":        in.Tags,
		"is_public":   in.IsPublic,
		"updated_at":  time.Now().UTC(),
	}
	if err := cs.customRepo.UpdateFields(ctx, nil, roadmapID, fields); err != nil {
		return nil, fmt.Errorf("update custom roadmap: %w", err)
	}

	roadmap, err = cs.customRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("reload custom roadmap: %w", err)
	}
	return roadmap, nil
}

func (cs *customRoadmapService) Delete(ctx context.Context, ownerID uuid.UUID, roadmapID string) error {
	if _, err := cs.requireOwned(ctx, nil, ownerID, roadmapID); err != nil {
		return err
	}

	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.nodeRepo.DeleteByRoadmapID(ctx, tx, roadmapID); err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}
		if err := cs.customRepo.Delete(ctx, tx, roadmapID); err != nil {
			return fmt.Errorf("delete custom roadmap: %w", err)
		}
		return nil
	})
}

func (cs *customRoadmapService) Get(ctx context.Context, principal uuid.UUID, roadmapID string) (*types.CustomRoadmap, []*types.CustomRoadmapNode, error) {
	roadmap, err := cs.customRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, nil, fmt.Errorf("load custom roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, nil, fmt.Errorf("custom roadmap %q: %w", roadmapID, apperr.ErrNotFound)
	}
	if !roadmap.IsPublic && roadmap.UserID != principal {
		return nil, nil, fmt.Errorf("custom roadmap %q: %w", roadmapID, apperr.ErrPermissionDenied)
	}

	nodes, err := cs.nodeRepo.GetByRoadmapID(ctx, nil, roadmapID)
	if err != nil {
		return nil, nil, fmt.Errorf("load nodes: %w", err)
	}
	return roadmap, nodes, nil
}

func (cs *customRoadmapService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.CustomRoadmap, []*types.CustomRoadmap, error) {
	own, err := cs.customRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list own roadmaps: %w", err)
	}
	public, err := cs.customRepo.GetPublicExcludingUser(ctx, nil, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list public roadmaps: %w", err)
	}
	return own, public, nil
}

// Clone copies a published roadmap into a new custom roadmap owned by the
// caller. Node titles, descriptions and link blobs are copied verbatim;
// positions follow the source's node order.
func (cs *customRoadmapService) Clone(ctx context.Context, ownerID uuid.UUID, sourceRoadmapID string, overrides CloneOverrides) (*types.CustomRoadmap, error) {
	source, err := cs.roadmapRepo.GetByID(ctx, nil, sourceRoadmapID)
	if err != nil {
		return nil, fmt.Errorf("load source roadmap: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("roadmap %q: %w", sourceRoadmapID, apperr.ErrNotFound)
	}

	now := time.Now().UTC()
	clonedFrom := source.ID
	roadmap := &types.CustomRoadmap{
		ID:          uuid.New().String(),
		Title:       stringOr(overrides.Title, fmt.Sprintf("My version of %s", source.Title)),
		Description: stringOr(overrides.Description, source.Description),
		Category:    stringOr(overrides.Category, source.Category),
		Difficulty:  stringOr(overrides.Difficulty, source.Difficulty),
		Tags:        stringOr(overrides.Tags, source.Tags),
		IsPublic:    boolOr(overrides.IsPublic, false),
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      ownerID,
		ClonedFrom:  &clonedFrom,
	}

	sourceNodes, err := cs.sourceNodes.GetByRoadmapID(ctx, nil, sourceRoadmapID)
	if err != nil {
		return nil, fmt.Errorf("load source nodes: %w", err)
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.customRepo.Create(ctx, tx, []*types.CustomRoadmap{roadmap}); err != nil {
			return fmt.Errorf("create custom roadmap: %w", err)
		}
		nodes := make([]*types.CustomRoadmapNode, 0, len(sourceNodes))
		for i, src := range sourceNodes {
			nodes = append(nodes, &types.CustomRoadmapNode{
				ID:          uuid.New().String(),
				RoadmapID:   roadmap.ID,
				Title:       src.Title,
				Description: src.Description,
				Links:       src.Links,
				Position:    i,
			})
		}
		if _, err := cs.nodeRepo.Create(ctx, tx, nodes); err != nil {
			return fmt.Errorf("clone nodes: %w", err)
		}
		return nil
	})
	if err != nil {
		cs.log.Error("Clone failed", "error", err, "source_id", sourceRoadmapID, "user_id", ownerID)
		return nil, err
	}
	return roadmap, nil
}

func (cs *customRoadmapService) AddNode(ctx context.Context, ownerID uuid.UUID, roadmapID string, in CustomNodeInput) (*types.CustomRoadmapNode, error) {
	if _, err := cs.requireOwned(ctx, nil, ownerID, roadmapID); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperr.ErrValidation)
	}

	var node *types.CustomRoadmapNode
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		maxPos, err := cs.nodeRepo.MaxPosition(ctx, tx, roadmapID)
		if err != nil {
			return fmt.Errorf("max position: %w", err)
		}
		node = &types.CustomRoadmapNode{
			ID:          uuid.New().String(),
			RoadmapID:   roadmapID,
			Title:       in.Title,
			Description: in.Description,
			Links:       types.EncodeLinks(in.Links),
			Position:    maxPos + 1,
		}
		if _, err := cs.nodeRepo.Create(ctx, tx, []*types.CustomRoadmapNode{node}); err != nil {
			return fmt.Errorf("create node: %w", err)
		}
		return cs.touch(ctx, tx, roadmapID)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (cs *customRoadmapService) UpdateNode(ctx context.Context, ownerID uuid.UUID, roadmapID, nodeID string, in CustomNodeInput) (*types.CustomRoadmapNode, error) {
	node, err := cs.requireOwnedNode(ctx, nil, ownerID, roadmapID, nodeID)
	if err != nil {
		return nil, err
	}

	node.Title = in.Title
	node.Description = in.Description
	if in.Links != nil {
		node.Links = types.EncodeLinks(in.Links)
	}
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.nodeRepo.Save(ctx, tx, node); err != nil {
			return fmt.Errorf("save node: %w", err)
		}
		return cs.touch(ctx, tx, roadmapID)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteNode removes the node and closes the position gap it leaves: every
// node positioned after it moves down by one.
func (cs *customRoadmapService) DeleteNode(ctx context.Context, ownerID uuid.UUID, roadmapID, nodeID string) error {
	node, err := cs.requireOwnedNode(ctx, nil, ownerID, roadmapID, nodeID)
	if err != nil {
		return err
	}

	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.nodeRepo.Delete(ctx, tx, node.ID); err != nil {
			return fmt.Errorf("delete node: %w", err)
		}
		if err := cs.nodeRepo.DecrementPositionsAbove(ctx, tx, roadmapID, node.Position); err != nil {
			return fmt.Errorf("renumber positions: %w", err)
		}
		return cs.touch(ctx, tx, roadmapID)
	})
}

// ReorderNodes assigns each listed node the position of its index in the
// list. Ids that do not belong to the roadmap are skipped silently; nodes
// omitted from the list keep their old position, which can leave duplicate
// positions behind. Callers are expected to send the full id list.
func (cs *customRoadmapService) ReorderNodes(ctx context.Context, ownerID uuid.UUID, roadmapID string, orderedNodeIDs []string) error {
	if _, err := cs.requireOwned(ctx, nil, ownerID, roadmapID); err != nil {
		return err
	}

	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, nodeID := range orderedNodeIDs {
			node, err := cs.nodeRepo.GetByID(ctx, tx, nodeID)
			if err != nil {
				return fmt.Errorf("load node: %w", err)
			}
			if node == nil || node.RoadmapID != roadmapID {
				continue
			}
			if err := cs.nodeRepo.UpdatePosition(ctx, tx, nodeID, position); err != nil {
				return fmt.Errorf("update position: %w", err)
			}
		}
		return cs.touch(ctx, tx, roadmapID)
	})
}

// AddLink appends one resource link to the node's links blob. The blob is
// decoded, mutated in memory and rewritten wholesale.
func (cs *customRoadmapService) AddLink(ctx context.Context, ownerID uuid.UUID, roadmapID, nodeID string, link types.ResourceLink) (*types.CustomRoadmapNode, error) {
	node, err := cs.requireOwnedNode(ctx, nil, ownerID, roadmapID, nodeID)
	if err != nil {
		return nil, err
	}
	if link.Title == "" || link.URL == "" {
		return nil, fmt.Errorf("link title and url are required: %w", apperr.ErrValidation)
	}

	links := node.LinkList()
	links = append(links, link)
	node.Links = types.EncodeLinks(links)
	if err := cs.nodeRepo.Save(ctx, nil, node); err != nil {
		return nil, fmt.Errorf("save node links: %w", err)
	}
	return node, nil
}

func (cs *customRoadmapService) DeleteLink(ctx context.Context, ownerID uuid.UUID, roadmapID, nodeID string, linkIndex int) (*types.CustomRoadmapNode, error) {
	node, err := cs.requireOwnedNode(ctx, nil, ownerID, roadmapID, nodeID)
	if err != nil {
		return nil, err
	}

	links := node.LinkList()
	if linkIndex < 0 || linkIndex >= len(links) {
		return nil, fmt.Errorf("link index %d: %w", linkIndex, apperr.ErrNotFound)
	}
	links = append(links[:linkIndex], links[linkIndex+1:]...)
	node.Links = types.EncodeLinks(links)
	if err := cs.nodeRepo.Save(ctx, nil, node); err != nil {
		return nil, fmt.Errorf("save node links: %w", err)
	}
	return node, nil
}

// requireOwned loads the roadmap and enforces ownership: missing → NotFound,
// someone else's → PermissionDenied.
func (cs *customRoadmapService) requireOwned(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, roadmapID string) (*types.CustomRoadmap, error) {
	roadmap, err := cs.customRepo.GetByID(ctx, tx, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load custom roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, fmt.Errorf("custom roadmap %q: %w", roadmapID, apperr.ErrNotFound)
	}
	if roadmap.UserID != ownerID {
		return nil, fmt.Errorf("custom roadmap %q: %w", roadmapID, apperr.ErrPermissionDenied)
	}
	return roadmap, nil
}

func (cs *customRoadmapService) requireOwnedNode(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, roadmapID, nodeID string) (*types.CustomRoadmapNode, error) {
	if _, err := cs.requireOwned(ctx, tx, ownerID, roadmapID); err != nil {
		return nil, err
	}
	node, err := cs.nodeRepo.GetByID(ctx, tx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load node: %w", err)
	}
	if node == nil || node.RoadmapID != roadmapID {
		return nil, fmt.Errorf("node %q: %w", nodeID, apperr.ErrNotFound)
	}
	return node, nil
}

func (cs *customRoadmapService) touch(ctx context.Context, tx *gorm.DB, roadmapID string) error {
	return cs.customRepo.UpdateFields(ctx, tx, roadmapID, map[string]interface{}{
		"updated_at": time.Now().UTC(),
	})
}

func stringOr(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

func boolOr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}
