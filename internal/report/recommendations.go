package report

import "streamreport/internal/locale"

// Item is one list entry. Placeholder marks a localized stand-in for an empty list.
type Item struct {
	Text        string `json:"text" yaml:"text"`
	Placeholder bool   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// RecommendationLists are the three advice lists ready for display.
type RecommendationLists struct {
	GoodPoints   []Item `json:"goodPoints" yaml:"good_points"`
	Improvements []Item `json:"improvements" yaml:"improvements"`
	NextActions  []Item `json:"nextActions" yaml:"next_actions"`
}

// BuildRecommendationLists maps each list to items. Empty good points and empty
// improvements get one placeholder each; empty next actions stay empty.
func BuildRecommendationLists(r Recommendations, cat locale.Catalog) RecommendationLists {
	return RecommendationLists{
		GoodPoints:   itemsOr(r.GoodPoints, cat.GoodPointsEmpty),
		Improvements: itemsOr(r.Improvements, cat.ImprovementsEmpty),
		NextActions:  itemsOr(r.NextActions, ""),
	}
}

func itemsOr(texts []string, placeholder string) []Item {
	if len(texts) == 0 {
		if placeholder == "" {
			return []Item{}
		}
		return []Item{{Text: placeholder, Placeholder: true}}
	}
	out := make([]Item, 0, len(texts))
	for _, t := range texts {
		out = append(out, Item{Text: t})
	}
	return out
}
