package types

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null;column:content" json:"content"`
	DatePosted time.Time `gorm:"not null;index;column:date_posted" json:"date_posted"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	RoadmapID  string    `gorm:"size:50;not null;index;column:roadmap_id" json:"roadmap_id"`
	Roadmap    *Roadmap  `gorm:"foreignKey:RoadmapID;references:ID" json:"roadmap,omitempty"`
}

func (Comment) TableName() string { return "comment" }
