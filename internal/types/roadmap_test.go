package types

import (
	"reflect"
	"testing"
)

func TestTagList(t *testing.T) {
	cases := []struct {
		tags string
		want []string
	}{
		{"", nil},
		{"go", []string{"go"}},
		{"go, backend ,web", []string{"go", "backend", "web"}},
		{" go ,, ,go", []string{"go", "go"}},
	}
	for _, c := range cases {
		r := Roadmap{Tags: c.tags}
		if got := r.TagList(); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("TagList(%q) = %v, want %v", c.tags, got, c.want)
		}
	}
}

func TestLinkList_ToleratesBadBlobs(t *testing.T) {
	n := RoadmapNode{}
	if got := n.LinkList(); len(got) != 0 {
		t.Fatalf("empty blob: expected no links, got %v", got)
	}
	n.Links = []byte("not json")
	if got := n.LinkList(); len(got) != 0 {
		t.Fatalf("malformed blob: expected no links, got %v", got)
	}
	n.Links = EncodeLinks([]ResourceLink{{Title: "a", URL: "u", Type: "article"}})
	got := n.LinkList()
	if len(got) != 1 || got[0].Title != "a" {
		t.Fatalf("round trip failed: %v", got)
	}
}
