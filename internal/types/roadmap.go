package types

import "strings"

// Roadmap is a published, admin-curated learning path. Tags is a comma-joined
// list of free-text labels; order and duplicates are preserved as imported.
type Roadmap struct {
	ID          string `gorm:"size:50;primaryKey" json:"id"`
	Title       string `gorm:"size:100;not null;column:title" json:"title"`
	Description string `gorm:"type:text;not null;column:description" json:"description"`
	Category    string `gorm:"size:50;not null;column:category" json:"category"`
	Difficulty  string `gorm:"size:50;not null;column:difficulty" json:"difficulty"`
	Tags        string `gorm:"size:200;column:tags" json:"tags"`

	Nodes []RoadmapNode `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoadmapID;references:ID" json:"nodes,omitempty"`
}

func (Roadmap) TableName() string { return "roadmap" }

// TagList splits the comma-joined tags field, trimming whitespace. Empty
// entries are dropped; duplicates are kept.
func (r *Roadmap) TagList() []string {
	if r.Tags == "" {
		return nil
	}
	parts := strings.Split(r.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
