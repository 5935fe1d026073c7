package report

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"streamreport/internal/locale"
)

const genericPeakColor = "#667eea"

type peakStyle struct {
	key   string
	color string
	title func(locale.Catalog) string
}

// knownPeakMetrics fixes the display order of the metrics the backend is known to emit.
var knownPeakMetrics = []peakStyle{
	{key: "viewers", color: "#2196F3", title: func(c locale.Catalog) string { return c.PeakViewers }},
	{key: "clicks", color: "#FF9800", title: func(c locale.Catalog) string { return c.PeakClicks }},
	{key: "comments", color: "#4CAF50", title: func(c locale.Catalog) string { return c.PeakComments }},
	{key: "likes", color: "#E91E63", title: func(c locale.Catalog) string { return c.PeakLikes }},
}

// PeakSection is the peak analysis section. When no metric has events, Metrics is
// empty and Fallback holds the single "no peak data" line.
type PeakSection struct {
	Metrics  []PeakMetric `json:"metrics" yaml:"metrics"`
	Fallback string       `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Empty reports whether the section shows the fallback line.
func (s PeakSection) Empty() bool {
	return len(s.Metrics) == 0
}

// PeakMetric groups the events of one metric.
type PeakMetric struct {
	Key    string     `json:"key" yaml:"key"`
	Title  string     `json:"title" yaml:"title"`
	Color  string     `json:"color" yaml:"color"`
	Known  bool       `json:"known" yaml:"known"`
	Events []PeakLine `json:"events" yaml:"events"`
}

// PeakLine is one rendered peak event.
type PeakLine struct {
	Minute      int    `json:"minute" yaml:"minute"`
	Value       string `json:"value" yaml:"value"`
	Increase    string `json:"increase" yaml:"increase"`
	Description string `json:"description" yaml:"description"`
	Text        string `json:"text" yaml:"text"`
}

func emptyPeakSection(cat locale.Catalog) PeakSection {
	return PeakSection{Metrics: []PeakMetric{}, Fallback: cat.NoPeakData}
}

// BuildPeakSection renders known metrics in fixed order, then any other metric in the
// order it appeared in the payload. Metrics without events are skipped.
func BuildPeakSection(peaks *orderedmap.OrderedMap[string, []PeakEvent], cat locale.Catalog) PeakSection {
	section := emptyPeakSection(cat)
	if peaks == nil || peaks.Len() == 0 {
		return section
	}

	known := make(map[string]struct{}, len(knownPeakMetrics))
	for _, style := range knownPeakMetrics {
		known[style.key] = struct{}{}
		events, ok := peaks.Get(style.key)
		if !ok || len(events) == 0 {
			continue
		}
		section.Metrics = append(section.Metrics, PeakMetric{
			Key:    style.key,
			Title:  style.title(cat),
			Color:  style.color,
			Known:  true,
			Events: peakLines(events, cat),
		})
	}

	for pair := peaks.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := known[pair.Key]; ok || len(pair.Value) == 0 {
			continue
		}
		section.Metrics = append(section.Metrics, PeakMetric{
			Key:    pair.Key,
			Title:  pair.Key,
			Color:  genericPeakColor,
			Events: peakLines(pair.Value, cat),
		})
	}

	if len(section.Metrics) > 0 {
		section.Fallback = ""
	}
	return section
}

func peakLines(events []PeakEvent, cat locale.Catalog) []PeakLine {
	out := make([]PeakLine, 0, len(events))
	for _, ev := range events {
		desc := strings.TrimSpace(ev.EventDescription)
		if desc == "" {
			desc = cat.NoEventInfo
		}
		value := cat.Number(locale.Round(ev.Value))
		increase := cat.Number(locale.Round(ev.Increase))
		out = append(out, PeakLine{
			Minute:      ev.Minute,
			Value:       value,
			Increase:    increase,
			Description: desc,
			Text:        fmt.Sprintf(cat.PeakLine, ev.Minute, value, increase, desc),
		})
	}
	return out
}
