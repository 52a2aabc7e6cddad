package types

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ResourceLink is one entry of a node's links JSON array.
type ResourceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// RoadmapNode is one topic within a published roadmap. Seq records the
// document order of the source catalog; iteration order over nodes is
// "order by seq", since the store does not guarantee insertion order.
type RoadmapNode struct {
	ID          string         `gorm:"size:50;primaryKey" json:"id"`
	RoadmapID   string         `gorm:"size:50;not null;index;column:roadmap_id" json:"roadmap_id"`
	Title       string         `gorm:"size:100;not null;column:title" json:"title"`
	Description string         `gorm:"type:text;not null;column:description" json:"description"`
	Links       datatypes.JSON `gorm:"column:links" json:"links"`
	Seq         int            `gorm:"not null;default:0;index;column:seq" json:"seq"`
}

func (RoadmapNode) TableName() string { return "roadmap_node" }

// LinkList decodes the links blob. A missing or malformed blob decodes to an
// empty list rather than an error, matching how links are rendered.
func (n *RoadmapNode) LinkList() []ResourceLink {
	return decodeLinks(n.Links)
}

func decodeLinks(raw datatypes.JSON) []ResourceLink {
	if len(raw) == 0 {
		return []ResourceLink{}
	}
	var links []ResourceLink
	if err := json.Unmarshal(raw, &links); err != nil {
		return []ResourceLink{}
	}
	return links
}

func encodeLinks(links []ResourceLink) datatypes.JSON {
	if links == nil {
		links = []ResourceLink{}
	}
	raw, err := json.Marshal(links)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}

// EncodeLinks marshals a link list into the stored JSON representation.
func EncodeLinks(links []ResourceLink) datatypes.JSON { return encodeLinks(links) }
