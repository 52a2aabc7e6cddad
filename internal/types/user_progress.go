package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProgress is the per-user completion flag for one roadmap node.
// The composite unique index makes (user, roadmap, node) a real constraint
// rather than a query-before-insert convention.
type UserProgress struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_roadmap_node,unique,priority:1" json:"user_id"`
	User          *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	RoadmapID     string       `gorm:"size:50;not null;index:idx_user_roadmap_node,unique,priority:2" json:"roadmap_id"`
	Roadmap       *Roadmap     `gorm:"foreignKey:RoadmapID;references:ID" json:"roadmap,omitempty"`
	NodeID        string       `gorm:"size:50;not null;index:idx_user_roadmap_node,unique,priority:3;column:node_id" json:"node_id"`
	Node          *RoadmapNode `gorm:"foreignKey:NodeID;references:ID" json:"node,omitempty"`
	Completed     bool         `gorm:"not null;default:false;column:completed" json:"completed"`
	DateCompleted *time.Time   `gorm:"column:date_completed" json:"date_completed"`
}

func (UserProgress) TableName() string { return "user_progress" }
