package types

import (
	"time"

	"github.com/google/uuid"
)

// CustomRoadmap is a user-authored roadmap, optionally cloned from a
// published one.
type CustomRoadmap struct {
	ID          string     `gorm:"size:50;primaryKey" json:"id"`
	Title       string     `gorm:"size:100;not null;column:title" json:"title"`
	Description string     `gorm:"type:text;not null;column:description" json:"description"`
	Category    string     `gorm:"size:50;not null;column:category" json:"category"`
	Difficulty  string     `gorm:"size:50;not null;column:difficulty" json:"difficulty"`
	Tags        string     `gorm:"size:200;column:tags" json:"tags"`
	IsPublic    bool       `gorm:"not null;default:false;column:is_public" json:"is_public"`
	CreatedAt   time.Time  `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;column:updated_at" json:"updated_at"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ClonedFrom  *string    `gorm:"size:50;column:cloned_from" json:"cloned_from"`
	Source      *Roadmap   `gorm:"foreignKey:ClonedFrom;references:ID" json:"source,omitempty"`

	Nodes []CustomRoadmapNode `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoadmapID;references:ID" json:"nodes,omitempty"`
}

func (CustomRoadmap) TableName() string { return "custom_roadmap" }
