package report

import (
	"fmt"

	"streamreport/internal/locale"
)

const maxCategoryExamples = 3

// CategoryView is one comment category with up to three examples.
type CategoryView struct {
	Name          string   `json:"name" yaml:"name"`
	Count         int      `json:"count" yaml:"count"`
	CountText     string   `json:"countText" yaml:"count_text"`
	ExamplesLabel string   `json:"examplesLabel,omitempty" yaml:"examples_label,omitempty"`
	Examples      []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// CommentCategories lists categories in payload order. A category without examples
// has no examples block.
func CommentCategories(ca CommentAnalysis, cat locale.Catalog) []CategoryView {
	out := []CategoryView{}
	if ca.Categories == nil {
		return out
	}
	for pair := ca.Categories.Oldest(); pair != nil; pair = pair.Next() {
		view := CategoryView{
			Name:      pair.Key,
			Count:     pair.Value,
			CountText: fmt.Sprintf(cat.CategoryCount, cat.Number(float64(pair.Value))),
		}
		examples := ca.Examples[pair.Key]
		if len(examples) > maxCategoryExamples {
			examples = examples[:maxCategoryExamples]
		}
		if len(examples) > 0 {
			view.ExamplesLabel = cat.ExamplesLabel
			view.Examples = append([]string(nil), examples...)
		}
		out = append(out, view)
	}
	return out
}
