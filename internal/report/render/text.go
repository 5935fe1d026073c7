package render

import (
	"bufio"
	"fmt"
	"io"

	"streamreport/internal/report"
)

// Text writes the view as plain terminal text.
func Text(w io.Writer, v report.View) error {
	bw := bufio.NewWriter(w)
	t := v.Titles

	if v.GeneratedAt != "" {
		fmt.Fprintf(bw, "%s: %s\n", t.GeneratedAt, v.GeneratedAt)
	}
	if v.VideoDuration > 0 {
		fmt.Fprintf(bw, "%s: %d\n", t.VideoDuration, v.VideoDuration)
	}
	if v.CommentTotal > 0 {
		fmt.Fprintf(bw, "%s: %d\n", t.CommentTotal, v.CommentTotal)
	}

	heading(bw, t.Summary)
	for _, s := range v.Summary {
		fmt.Fprintf(bw, "  %s %s: %s\n", s.Icon, s.Label, s.Display)
	}

	heading(bw, t.Charts)
	for _, c := range v.Charts {
		if !c.Present() {
			continue
		}
		fmt.Fprintf(bw, "  %s: %s\n", c.Title, c.Path)
	}

	heading(bw, t.Peaks)
	if v.Peaks.Empty() {
		fmt.Fprintf(bw, "  %s\n", v.Peaks.Fallback)
	}
	for _, m := range v.Peaks.Metrics {
		fmt.Fprintf(bw, "  %s\n", m.Title)
		for _, ev := range m.Events {
			fmt.Fprintf(bw, "    %s\n", ev.Text)
		}
	}

	heading(bw, t.Comments)
	for _, c := range v.Comments {
		fmt.Fprintf(bw, "  %s  %s\n", c.Name, c.CountText)
		if len(c.Examples) == 0 {
			continue
		}
		fmt.Fprintf(bw, "    %s\n", c.ExamplesLabel)
		for _, ex := range c.Examples {
			fmt.Fprintf(bw, "    • %s\n", ex)
		}
	}

	heading(bw, t.Recommendations)
	list(bw, t.GoodPoints, v.Recommendations.GoodPoints)
	list(bw, t.Improvements, v.Recommendations.Improvements)
	list(bw, t.NextActions, v.Recommendations.NextActions)

	return bw.Flush()
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n== %s ==\n", title)
}

func list(w io.Writer, title string, items []report.Item) {
	fmt.Fprintf(w, "  %s\n", title)
	for i, it := range items {
		fmt.Fprintf(w, "    %d. %s\n", i+1, it.Text)
	}
}
