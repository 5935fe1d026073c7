package stub

import (
	"fmt"
	"math"
	"sort"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"streamreport/internal/report"
)

// Comment categories in the order they appear in a report.
const (
	CategoryQuestion   = "質問"
	CategorySurprise   = "驚き"
	CategoryExcitement = "ワクワク・期待"
	CategoryGreeting   = "挨拶"
	CategoryPurchase   = "購入意志"
	CategoryOther      = "その他"
)

const (
	maxPeaksPerMetric   = 5
	maxExamples         = 10
	peakPercentile      = 0.75
	generatedAtLayout   = "2006-01-02 15:04:05"
	timelineChartFile   = "timeline_chart.png"
	commentPieChartFile = "comment_pie_chart.png"
)

var categoryOrder = []string{
	CategoryQuestion, CategorySurprise, CategoryExcitement, CategoryGreeting, CategoryPurchase, CategoryOther,
}

// classification is checked top to bottom; the first matching rule wins.
var classification = []struct {
	category string
	patterns []string
}{
	{CategoryPurchase, []string{"買", "購入", "注文", "ポチ", "カート", "決済", "買い物", "ほしい"}},
	{CategoryQuestion, []string{"？", "?", "ですか", "ますか", "どう", "なに", "いつ", "どこ", "誰", "何"}},
	{CategorySurprise, []string{"すごい", "えー", "！", "!", "わー", "おー", "マジ", "うそ", "本当"}},
	{CategoryExcitement, []string{"楽しみ", "欲しい", "気になる", "いいね", "素敵", "かわいい", "かっこいい", "ワクワク"}},
	{CategoryGreeting, []string{"こんにちは", "こんばんは", "おはよう", "初めて", "はじめまして", "よろしく", "来ました"}},
}

const (
	goodClicks     = "【商品クリック誘導が効果的】複数のタイミングでクリック数が増加しており、視覚的な商品訴求が成功しています。"
	goodPurchase   = "【購入意欲の高いコメントが多い】視聴者の購買意欲を引き出すことに成功しています。"
	fixRetention   = "【視聴維持率の改善】配信後半で視聴者が大幅に減少しています。中盤に複数の山場を設けて離脱を防ぎましょう。"
	fixQuestions   = "【質問への即応性向上】質問コメントが多いため、リアルタイムでの回答を強化することでエンゲージメントが向上します。"
	noEventInfo    = "イベント情報なし"
	sceneDescFmt   = "%d分目のシーン"
	retentionFloor = 0.5
)

var nextActions = []string{
	"冒頭30秒で「今日の配信で得られる3つのメリット」を明示する（相手ありきの原則）",
	"商品を常に画面中央に配置し、前後の動きでオートフォーカスを活用する（魅せる技術）",
	"「残り○個」「あと○分」などの限定性を強調して「今」買う理由を提示する（鉄則）",
}

// Peak is a row whose increase over the previous row reaches the series' upper quartile.
type Peak struct {
	Minute   int
	Value    float64
	Increase float64
}

// FindPeaks returns every row whose increase is positive and at least the 75th
// percentile of all row-over-row differences (the first row's difference is zero).
func FindPeaks(minutes []int, values []float64) []Peak {
	if len(values) == 0 {
		return nil
	}
	diffs := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		diffs[i] = values[i] - values[i-1]
	}
	threshold := quantile(diffs, peakPercentile)

	var peaks []Peak
	for i, d := range diffs {
		if d >= threshold && d > 0 {
			peaks = append(peaks, Peak{Minute: minutes[i], Value: values[i], Increase: d})
		}
	}
	return peaks
}

// quantile uses linear interpolation between closest ranks.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Classification is the per-category result of sorting comments.
type Classification struct {
	Counts   map[string]int
	Examples map[string][]string
	Total    int
}

// Classify sorts each comment into exactly one category.
func Classify(comments []string) Classification {
	out := Classification{
		Counts:   make(map[string]int, len(categoryOrder)),
		Examples: make(map[string][]string, len(categoryOrder)),
		Total:    len(comments),
	}
	for _, c := range categoryOrder {
		out.Counts[c] = 0
		out.Examples[c] = []string{}
	}
	for _, text := range comments {
		category := classify(text)
		out.Counts[category]++
		if len(out.Examples[category]) < maxExamples {
			out.Examples[category] = append(out.Examples[category], text)
		}
	}
	return out
}

func classify(text string) string {
	for _, rule := range classification {
		if containsAny(text, rule.patterns) {
			return rule.category
		}
	}
	return CategoryOther
}

// BuildReport assembles the report for one session from its parsed sheets.
func BuildReport(sessionID string, series Series, comments []string, now time.Time) report.Report {
	classified := Classify(comments)

	peaks := orderedmap.New[string, []report.PeakEvent]()
	clickPeaks := 0
	for _, metric := range metricOrder {
		if !series.Has(metric) {
			continue
		}
		found := FindPeaks(series.Minutes, series.Columns[metric])
		if metric == MetricClicks {
			clickPeaks = len(found)
		}
		if len(found) == 0 {
			continue
		}
		if len(found) > maxPeaksPerMetric {
			found = found[:maxPeaksPerMetric]
		}
		events := make([]report.PeakEvent, 0, len(found))
		for _, p := range found {
			events = append(events, report.PeakEvent{
				Minute:           p.Minute,
				Value:            p.Value,
				Increase:         p.Increase,
				EventDescription: sceneDescription(p.Minute, series.Len()),
			})
		}
		peaks.Set(metric, events)
	}

	categories := orderedmap.New[string, int]()
	for _, c := range categoryOrder {
		categories.Set(c, classified.Counts[c])
	}

	return report.Report{
		SessionID:     sessionID,
		GeneratedAt:   now.Format(generatedAtLayout),
		VideoDuration: series.Len(),
		SummaryStats:  summarize(series, len(comments)),
		Charts: report.Charts{
			report.ChartTimeline:   timelineChartFile,
			report.ChartCommentPie: commentPieChartFile,
		},
		PeakAnalysis: peaks,
		CommentAnalysis: report.CommentAnalysis{
			Categories: categories,
			Examples:   classified.Examples,
			Total:      classified.Total,
		},
		Recommendations: recommend(series, classified, clickPeaks),
	}
}

// sceneDescription stands in for video scene detection: one event per minute of data.
func sceneDescription(minute, duration int) string {
	if minute < 0 || minute >= duration {
		return noEventInfo
	}
	return fmt.Sprintf(sceneDescFmt, minute)
}

func summarize(series Series, commentRows int) report.SummaryStats {
	stats := report.SummaryStats{}
	if vals, ok := series.Columns[MetricViewers]; ok && len(vals) > 0 {
		maxV, sum := vals[0], 0.0
		for _, v := range vals {
			maxV = math.Max(maxV, v)
			sum += v
		}
		stats["max_viewers"] = math.Trunc(maxV)
		stats["avg_viewers"] = sum / float64(len(vals))
	}
	totals := map[string]string{
		MetricLikes:    "total_likes",
		MetricComments: "total_comments_metric",
		MetricClicks:   "total_clicks",
	}
	for metric, key := range totals {
		vals, ok := series.Columns[metric]
		if !ok {
			continue
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		stats[key] = math.Trunc(sum)
	}
	stats["total_comments_actual"] = float64(commentRows)
	return stats
}

func recommend(series Series, c Classification, clickPeaks int) report.Recommendations {
	rec := report.Recommendations{
		GoodPoints:   []string{},
		Improvements: []string{},
		NextActions:  append([]string(nil), nextActions...),
	}
	total := float64(c.Total)

	if clickPeaks > 3 {
		rec.GoodPoints = append(rec.GoodPoints, goodClicks)
	}
	if float64(c.Counts[CategoryPurchase]) > total*0.1 {
		rec.GoodPoints = append(rec.GoodPoints, goodPurchase)
	}
	if vals, ok := series.Columns[MetricViewers]; ok && len(vals) > 0 {
		maxV := 0.0
		for _, v := range vals {
			maxV = math.Max(maxV, v)
		}
		retention := 0.0
		if maxV > 0 {
			retention = vals[len(vals)-1] / maxV
		}
		if retention < retentionFloor {
			rec.Improvements = append(rec.Improvements, fixRetention)
		}
	}
	if float64(c.Counts[CategoryQuestion]) > total*0.2 {
		rec.Improvements = append(rec.Improvements, fixQuestions)
	}
	return rec
}

// hasExt reports whether name ends in one of the allowed extensions (case-insensitive).
func hasExt(name string, allowed []string) bool {
	ext := extOf(name)
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
