package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RoadmapVersion is an immutable point-in-time snapshot of a roadmap and its
// nodes. VersionNumber is dense and increasing per roadmap, starting at 1.
type RoadmapVersion struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	RoadmapID     string         `gorm:"size:50;not null;index:idx_roadmap_version,unique,priority:1;column:roadmap_id" json:"roadmap_id"`
	Roadmap       *Roadmap       `gorm:"foreignKey:RoadmapID;references:ID" json:"roadmap,omitempty"`
	VersionNumber int            `gorm:"not null;index:idx_roadmap_version,unique,priority:2;column:version_number" json:"version_number"`
	Data          datatypes.JSON `gorm:"not null;column:data" json:"data"`
	CreatedAt     time.Time      `gorm:"not null;column:created_at" json:"created_at"`
	CreatedBy     *uuid.UUID     `gorm:"type:uuid;column:created_by" json:"created_by"`
	Description   *string        `gorm:"size:200;column:description" json:"description"`
}

func (RoadmapVersion) TableName() string { return "roadmap_version" }

// VersionSnapshot is the decoded form of RoadmapVersion.Data.
type VersionSnapshot struct {
	Roadmap RoadmapSnapshot `json:"roadmap"`
	Nodes   []NodeSnapshot  `json:"nodes"`
}

type RoadmapSnapshot struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Tags        string `json:"tags"`
}

type NodeSnapshot struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Links       []ResourceLink `json:"links"`
}
