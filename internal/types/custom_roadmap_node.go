package types

import "gorm.io/datatypes"

// CustomRoadmapNode is one topic within a custom roadmap. Position is a
// zero-based contiguous sequence within the roadmap; every mutating
// operation re-establishes contiguity before returning.
type CustomRoadmapNode struct {
	ID          string         `gorm:"size:50;primaryKey" json:"id"`
	RoadmapID   string         `gorm:"size:50;not null;index;column:roadmap_id" json:"roadmap_id"`
	Title       string         `gorm:"size:100;not null;column:title" json:"title"`
	Description string         `gorm:"type:text;not null;column:description" json:"description"`
	Links       datatypes.JSON `gorm:"column:links" json:"links"`
	Position    int            `gorm:"not null;default:0;index;column:position" json:"position"`
}

func (CustomRoadmapNode) TableName() string { return "custom_roadmap_node" }

func (n *CustomRoadmapNode) LinkList() []ResourceLink {
	return decodeLinks(n.Links)
}
