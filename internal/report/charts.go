package report

import (
	"strings"

	"streamreport/internal/locale"
)

// Chart kinds rendered by the client.
const (
	ChartTimeline   = "timeline"
	ChartCommentPie = "comment_pie"
)

// ChartSlot is one visual slot of the charts section. Path is empty when the
// backend produced no asset for the kind.
type ChartSlot struct {
	Kind  string `json:"kind" yaml:"kind"`
	Title string `json:"title" yaml:"title"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Present reports whether the slot has an asset to show.
func (s ChartSlot) Present() bool {
	return s.Path != ""
}

// ChartSlots resolves the two fixed chart kinds to session-scoped asset paths.
func ChartSlots(charts Charts, assetRoot, sessionID string, cat locale.Catalog) []ChartSlot {
	kinds := []struct {
		kind  string
		title string
	}{
		{kind: ChartTimeline, title: cat.ChartTimeline},
		{kind: ChartCommentPie, title: cat.ChartCommentPie},
	}
	out := make([]ChartSlot, 0, len(kinds))
	for _, k := range kinds {
		slot := ChartSlot{Kind: k.kind, Title: k.title}
		if file := strings.TrimSpace(charts[k.kind]); file != "" {
			slot.File = file
			slot.Path = AssetPath(assetRoot, sessionID, file)
		}
		out = append(out, slot)
	}
	return out
}

// AssetPath builds {assetRoot}/{sessionID}/{file}.
func AssetPath(assetRoot, sessionID, file string) string {
	root := strings.TrimRight(strings.TrimSpace(assetRoot), "/")
	if root == "" {
		root = DefaultAssetRoot
	}
	return root + "/" + sessionID + "/" + file
}
