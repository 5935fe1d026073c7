package report

import (
	"encoding/json"
	"testing"
)

func TestDecodeToleratesMissingSections(t *testing.T) {
	r, err := Decode([]byte(`{"summary_stats": {}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(r.SummaryStats) != 0 {
		t.Fatalf("expected empty stats, got %v", r.SummaryStats)
	}
	if r.PeakAnalysis != nil || r.CommentAnalysis.Categories != nil {
		t.Fatalf("expected absent sections to stay nil")
	}
}

func TestDecodeRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`null`, `[]`, `"report"`} {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}

func TestDecodeMalformedSectionIsDropped(t *testing.T) {
	raw := `{
  "summary_stats": {"max_viewers": 10},
  "comment_analysis": ["not", "an", "object"],
  "recommendations": {"good_points": ["ok"]}
}`
	r, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.SummaryStats["max_viewers"] != 10 {
		t.Fatalf("expected max_viewers=10, got %v", r.SummaryStats["max_viewers"])
	}
	if r.CommentAnalysis.Categories != nil {
		t.Fatalf("expected malformed comment_analysis to be dropped")
	}
	if len(r.Recommendations.GoodPoints) != 1 {
		t.Fatalf("expected recommendations to survive a sibling failure")
	}
}

func TestDecodeSummaryStatsSkipsNonNumeric(t *testing.T) {
	r, err := Decode([]byte(`{"summary_stats": {"max_viewers": 12, "avg_viewers": null, "total_likes": "many"}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := r.SummaryStats["avg_viewers"]; ok {
		t.Fatalf("null avg_viewers should be absent")
	}
	if _, ok := r.SummaryStats["total_likes"]; ok {
		t.Fatalf("string total_likes should be absent")
	}
	if r.SummaryStats["max_viewers"] != 12 {
		t.Fatalf("unexpected max_viewers: %v", r.SummaryStats["max_viewers"])
	}
}

func TestDecodeChartsDropsNullFilenames(t *testing.T) {
	r, err := Decode([]byte(`{"charts": {"timeline": "timeline_chart.png", "comment_pie": null}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Charts[ChartTimeline] != "timeline_chart.png" {
		t.Fatalf("unexpected timeline: %q", r.Charts[ChartTimeline])
	}
	if _, ok := r.Charts[ChartCommentPie]; ok {
		t.Fatalf("null comment_pie should be absent")
	}
}

func TestDecodePreservesCategoryOrder(t *testing.T) {
	raw := `{"comment_analysis": {"categories": {"質問": 4, "購入意志": 2, "その他": 9}, "examples": {}, "total": 15}}`
	r, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var keys []string
	for pair := r.CommentAnalysis.Categories.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	want := []string{"質問", "購入意志", "その他"}
	if len(keys) != len(want) {
		t.Fatalf("unexpected keys: %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	if r.CommentAnalysis.Total != 15 {
		t.Fatalf("unexpected total: %d", r.CommentAnalysis.Total)
	}
}

func TestDecodePeakMinuteAcceptsFloat(t *testing.T) {
	raw := `{"peak_analysis": {"viewers": [{"minute": 12.0, "value": 100.4, "increase": 20, "event_description": "intro"}]}}`
	r, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	events, ok := r.PeakAnalysis.Get("viewers")
	if !ok || len(events) != 1 {
		t.Fatalf("expected one viewers event, got %v", events)
	}
	if events[0].Minute != 12 {
		t.Fatalf("unexpected minute: %d", events[0].Minute)
	}
}

func TestReportRoundTripsThroughJSON(t *testing.T) {
	r, err := Decode([]byte(sampleReportJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	payload, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode again: %v", err)
	}
	if again.PeakAnalysis.Len() != r.PeakAnalysis.Len() {
		t.Fatalf("peak metrics lost in round trip")
	}
	if again.SummaryStats["avg_viewers"] != r.SummaryStats["avg_viewers"] {
		t.Fatalf("summary lost in round trip")
	}
}

const sampleReportJSON = `{
  "generated_at": "2024-05-01 20:15:00",
  "video_duration": 42,
  "summary_stats": {
    "max_viewers": 1523,
    "avg_viewers": 987.6,
    "total_likes": 4210,
    "total_comments_metric": 300,
    "total_comments_actual": 312,
    "total_clicks": 88
  },
  "charts": {"timeline": "timeline_chart.png", "comment_pie": "comment_pie_chart.png"},
  "peak_analysis": {
    "likes": [{"minute": 30, "value": 120, "increase": 45.5, "event_description": "giveaway"}],
    "shares": [{"minute": 5, "value": 3, "increase": 2, "event_description": ""}],
    "viewers": [{"minute": 12, "value": 1523.4, "increase": 400.2, "event_description": "product reveal"}],
    "clicks": []
  },
  "comment_analysis": {
    "categories": {"質問": 3, "購入意志": 2, "spam": 1},
    "examples": {"質問": ["a?", "b?", "c?", "d?"], "購入意志": ["buy"]},
    "total": 6
  },
  "recommendations": {"good_points": [], "improvements": ["retain viewers"], "next_actions": []}
}`
