package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/types"
)

// catalogIndex mirrors roadmaps.json: the list of roadmaps to import with
// their scalar fields. Node content lives in one <id>.json file per roadmap.
type catalogIndex struct {
	Roadmaps []catalogRoadmap `json:"roadmaps"`
}

type catalogRoadmap struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Tags        []string `json:"tags"`
}

type catalogNode struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Links       []types.ResourceLink `json:"links"`
}

// ImportResult reports what one import run did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type ImporterService interface {
	// ImportCatalog loads roadmaps.json plus the per-roadmap node files from
	// dir. Roadmaps whose id already exists are skipped whole, so reruns are
	// safe. Node order follows the order of keys in the node file.
	ImportCatalog(ctx context.Context, dir string) (*ImportResult, error)
}

type importerService struct {
	db          *gorm.DB
	log         *logger.Logger
	roadmapRepo repos.RoadmapRepo
	nodeRepo    repos.RoadmapNodeRepo
}

func NewImporterService(
	db *gorm.DB,
	baseLog *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	nodeRepo repos.RoadmapNodeRepo,
) ImporterService {
	serviceLog := baseLog.With("service", "ImporterService")
	return &importerService{
		db:          db,
		log:         serviceLog,
		roadmapRepo: roadmapRepo,
		nodeRepo:    nodeRepo,
	}
}

func (is *importerService) ImportCatalog(ctx context.Context, dir string) (*ImportResult, error) {
	indexPath := filepath.Join(dir, "roadmaps.json")
	indexRaw, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog index: %w", err)
	}
	var index catalogIndex
	if err := json.Unmarshal(indexRaw, &index); err != nil {
		return nil, fmt.Errorf("decode catalog index: %w", err)
	}

	result := &ImportResult{}
	for _, entry := range index.Roadmaps {
		existing, err := is.roadmapRepo.GetByID(ctx, nil, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("check roadmap %q: %w", entry.ID, err)
		}
		if existing != nil {
			is.log.Info("skipping existing roadmap", "roadmap_id", entry.ID)
			result.Skipped++
			continue
		}

		nodes, err := is.loadNodes(dir, entry.ID)
		if err != nil {
			return nil, err
		}

		err = is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			roadmap := &types.Roadmap{
				ID:          entry.ID,
				Title:       entry.Title,
				Description: entry.Description,
				Category:    entry.Category,
				Difficulty:  entry.Difficulty,
				Tags:        strings.Join(entry.Tags, ","),
			}
			if _, err := is.roadmapRepo.Create(ctx, tx, []*types.Roadmap{roadmap}); err != nil {
				return fmt.Errorf("create roadmap %q: %w", entry.ID, err)
			}
			if _, err := is.nodeRepo.Create(ctx, tx, nodes); err != nil {
				return fmt.Errorf("create nodes for %q: %w", entry.ID, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		is.log.Info("imported roadmap", "roadmap_id", entry.ID, "nodes", len(nodes))
		result.Imported++
	}
	return result, nil
}

// loadNodes decodes <id>.json preserving document order. encoding/json maps
// are unordered, so the file is walked token by token instead: each top-level
// key is a node id, each value a node body, and the sequence number is the
// position of the key in the file.
func (is *importerService) loadNodes(dir, roadmapID string) ([]*types.RoadmapNode, error) {
	path := filepath.Join(dir, roadmapID+".json")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open node file for %q: %w", roadmapID, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode node file for %q: %w", roadmapID, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("node file for %q: expected JSON object", roadmapID)
	}

	var nodes []*types.RoadmapNode
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode node id in %q: %w", roadmapID, err)
		}
		nodeID, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("node file for %q: non-string key", roadmapID)
		}
		var body catalogNode
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("decode node %q in %q: %w", nodeID, roadmapID, err)
		}
		nodes = append(nodes, &types.RoadmapNode{
			ID:          nodeID,
			RoadmapID:   roadmapID,
			Title:       body.Title,
			Description: body.Description,
			Links:       types.EncodeLinks(body.Links),
			Seq:         len(nodes),
		})
	}
	return nodes, nil
}
