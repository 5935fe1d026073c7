package report

import "streamreport/internal/locale"

// StatEntry is one card of the summary section.
type StatEntry struct {
	Key     string  `json:"key" yaml:"key"`
	Icon    string  `json:"icon" yaml:"icon"`
	Label   string  `json:"label" yaml:"label"`
	Value   float64 `json:"value" yaml:"value"`
	Display string  `json:"display" yaml:"display"`
}

// statCard describes one summary card. Fields are tried in order; the first non-zero
// value wins and an exhausted chain yields 0.
type statCard struct {
	key    string
	icon   string
	label  func(locale.Catalog) string
	fields []string
	round  bool
}

var statCards = []statCard{
	{key: "max_viewers", icon: "👥", label: func(c locale.Catalog) string { return c.StatMaxViewers }, fields: []string{"max_viewers"}},
	{key: "avg_viewers", icon: "📊", label: func(c locale.Catalog) string { return c.StatAvgViewers }, fields: []string{"avg_viewers"}, round: true},
	{key: "total_likes", icon: "❤️", label: func(c locale.Catalog) string { return c.StatTotalLikes }, fields: []string{"total_likes"}},
	{key: "total_comments", icon: "💬", label: func(c locale.Catalog) string { return c.StatTotalComments }, fields: []string{"total_comments_actual", "total_comments_metric"}},
	{key: "total_clicks", icon: "🖱️", label: func(c locale.Catalog) string { return c.StatTotalClicks }, fields: []string{"total_clicks"}},
}

// SummaryEntries returns exactly five stat entries in fixed order.
func SummaryEntries(stats SummaryStats, cat locale.Catalog) []StatEntry {
	out := make([]StatEntry, 0, len(statCards))
	for _, card := range statCards {
		value := firstNonZero(stats, card.fields)
		if card.round {
			value = locale.Round(value)
		}
		out = append(out, StatEntry{
			Key:     card.key,
			Icon:    card.icon,
			Label:   card.label(cat),
			Value:   value,
			Display: cat.Number(value),
		})
	}
	return out
}

func firstNonZero(stats SummaryStats, fields []string) float64 {
	for _, f := range fields {
		if v, ok := stats[f]; ok && v != 0 {
			return v
		}
	}
	return 0
}
