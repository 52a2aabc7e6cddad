package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/apperr"
	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/types"
)

type VersionService interface {
	CreateVersion(ctx context.Context, createdBy *uuid.UUID, roadmapID, description string) (*types.RoadmapVersion, error)
	ListVersions(ctx context.Context, roadmapID string) ([]*types.RoadmapVersion, error)
	GetVersion(ctx context.Context, roadmapID string, versionNumber int) (*types.VersionSnapshot, error)
	RestoreVersion(ctx context.Context, createdBy *uuid.UUID, roadmapID string, versionNumber int) error
}

type versionService struct {
	db          *gorm.DB
	log         *logger.Logger
	roadmapRepo repos.RoadmapRepo
	nodeRepo    repos.RoadmapNodeRepo
	versionRepo repos.RoadmapVersionRepo
}

func NewVersionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	nodeRepo repos.RoadmapNodeRepo,
	versionRepo repos.RoadmapVersionRepo,
) VersionService {
	serviceLog := baseLog.With("service", "VersionService")
	return &versionService{
		db:          db,
		log:         serviceLog,
		roadmapRepo: roadmapRepo,
		nodeRepo:    nodeRepo,
		versionRepo: versionRepo,
	}
}

// CreateVersion snapshots the roadmap's current scalar fields and node list
// into one immutable JSON document. Version numbers are per-roadmap,
// max+1 starting at 1. createdBy is nil when no principal is acting.
func (vs *versionService) CreateVersion(ctx context.Context, createdBy *uuid.UUID, roadmapID, description string) (*types.RoadmapVersion, error) {
	var created *types.RoadmapVersion
	err := vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := vs.createVersionTx(ctx, tx, createdBy, roadmapID, description)
		if err != nil {
			return err
		}
		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (vs *versionService) createVersionTx(ctx context.Context, tx *gorm.DB, createdBy *uuid.UUID, roadmapID, description string) (*types.RoadmapVersion, error) {
	roadmap, err := vs.roadmapRepo.GetByID(ctx, tx, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, fmt.Errorf("roadmap %q: %w", roadmapID, apperr.ErrNotFound)
	}
	nodes, err := vs.nodeRepo.GetByRoadmapID(ctx, tx, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}

	snapshot := types.VersionSnapshot{
		Roadmap: types.RoadmapSnapshot{
			ID:          roadmap.ID,
			Title:       roadmap.Title,
			Description: roadmap.Description,
			Category:    roadmap.Category,
			Difficulty:  roadmap.Difficulty,
			Tags:        roadmap.Tags,
		},
		Nodes: make([]types.NodeSnapshot, 0, len(nodes)),
	}
	for _, node := range nodes {
		snapshot.Nodes = append(snapshot.Nodes, types.NodeSnapshot{
			ID:          node.ID,
			Title:       node.Title,
			Description: node.Description,
			Links:       node.LinkList(),
		})
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	maxNumber, err := vs.versionRepo.MaxVersionNumber(ctx, tx, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("max version number: %w", err)
	}

	version := &types.RoadmapVersion{
		RoadmapID:     roadmapID,
		VersionNumber: maxNumber + 1,
		Data:          data,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     createdBy,
	}
	if description != "" {
		version.Description = &description
	}

	if _, err := vs.versionRepo.Create(ctx, tx, []*types.RoadmapVersion{version}); err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}
	return version, nil
}

func (vs *versionService) ListVersions(ctx context.Context, roadmapID string) ([]*types.RoadmapVersion, error) {
	versions, err := vs.versionRepo.GetByRoadmapID(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

func (vs *versionService) GetVersion(ctx context.Context, roadmapID string, versionNumber int) (*types.VersionSnapshot, error) {
	version, err := vs.versionRepo.GetByRoadmapAndNumber(ctx, nil, roadmapID, versionNumber)
	if err != nil {
		return nil, fmt.Errorf("load version: %w", err)
	}
	if version == nil {
		return nil, fmt.Errorf("version %d of roadmap %q: %w", versionNumber, roadmapID, apperr.ErrNotFound)
	}

	var snapshot types.VersionSnapshot
	if err := json.Unmarshal(version.Data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// RestoreVersion rolls a roadmap back to a stored snapshot. The state being
// overwritten is snapshotted first ("backup"), the scalar fields and node set
// are replaced atomically, then the restored state is snapshotted again
// ("marker"), so both sides of the restore remain recoverable.
func (vs *versionService) RestoreVersion(ctx context.Context, createdBy *uuid.UUID, roadmapID string, versionNumber int) error {
	snapshot, err := vs.GetVersion(ctx, roadmapID, versionNumber)
	if err != nil {
		return err
	}

	backupDesc := fmt.Sprintf("Backup before restoring to version %d", versionNumber)
	if _, err := vs.CreateVersion(ctx, createdBy, roadmapID, backupDesc); err != nil {
		return fmt.Errorf("create pre-restore backup: %w", err)
	}

	err = vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"title":       snapshot.Roadmap.Title,
			"description": snapshot.Roadmap.Description,
			"category":    snapshot.Roadmap.Category,
			"difficulty":  snapshot.Roadmap.Difficulty,
			"tags":        snapshot.Roadmap.Tags,
		}
		if err := vs.roadmapRepo.UpdateFields(ctx, tx, roadmapID, fields); err != nil {
			return fmt.Errorf("update roadmap fields: %w", err)
		}

		if err := vs.nodeRepo.DeleteByRoadmapID(ctx, tx, roadmapID); err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}

		nodes := make([]*types.RoadmapNode, 0, len(snapshot.Nodes))
		for i, ns := range snapshot.Nodes {
			nodes = append(nodes, &types.RoadmapNode{
				ID:          ns.ID,
				RoadmapID:   roadmapID,
				Title:       ns.Title,
				Description: ns.Description,
				Links:       types.EncodeLinks(ns.Links),
				Seq:         i,
			})
		}
		if _, err := vs.nodeRepo.Create(ctx, tx, nodes); err != nil {
			return fmt.Errorf("recreate nodes: %w", err)
		}
		return nil
	})
	if err != nil {
		vs.log.Error("RestoreVersion failed", "error", err, "roadmap_id", roadmapID, "version_number", versionNumber)
		return err
	}

	markerDesc := fmt.Sprintf("Restored from version %d", versionNumber)
	if _, err := vs.CreateVersion(ctx, createdBy, roadmapID, markerDesc); err != nil {
		return fmt.Errorf("create post-restore marker: %w", err)
	}
	return nil
}
