// Package locale holds the user-facing strings of the client and locale-aware number formatting.
package locale

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Catalog is the set of localized strings shown to the user.
type Catalog struct {
	Tag language.Tag

	// ErrorPrefix is printed before each error shown on the console.
	ErrorPrefix string

	// Upload stage.
	UploadInProgress string
	UploadDone       string
	UploadFailed     string
	MissingInputs    string

	// Analysis stage, in display order.
	AnalysisStages []string
	AnalysisDone   string
	AnalysisFailed string

	// Report sections.
	SummaryTitle         string
	ChartsTitle          string
	PeaksTitle           string
	CommentsTitle        string
	RecommendationsTitle string
	GoodPointsTitle      string
	ImprovementsTitle    string
	NextActionsTitle     string

	StatMaxViewers    string
	StatAvgViewers    string
	StatTotalLikes    string
	StatTotalComments string
	StatTotalClicks   string

	ChartTimeline   string
	ChartCommentPie string

	PeakViewers  string
	PeakClicks   string
	PeakComments string
	PeakLikes    string
	NoPeakData   string
	NoEventInfo  string
	// PeakLine is a fmt template: minute, value, increase, description.
	PeakLine string

	// CategoryCount is a fmt template taking the formatted count.
	CategoryCount string
	ExamplesLabel string

	GoodPointsEmpty   string
	ImprovementsEmpty string

	GeneratedAt   string
	VideoDuration string
	CommentTotal  string
}

var japanese = Catalog{
	Tag: language.Japanese,

	ErrorPrefix: "エラー: ",

	UploadInProgress: "ファイルをアップロード中...",
	UploadDone:       "アップロード完了!",
	UploadFailed:     "アップロードに失敗しました",
	MissingInputs:    "ファイルが選択されていません",

	AnalysisStages: []string{
		"動画を分析中... (1/4)",
		"データを分析中... (2/4)",
		"コメントを分類中... (3/4)",
		"レポートを生成中... (4/4)",
	},
	AnalysisDone:   "分析完了!",
	AnalysisFailed: "分析に失敗しました",

	SummaryTitle:         "サマリー",
	ChartsTitle:          "グラフ",
	PeaksTitle:           "ピーク分析",
	CommentsTitle:        "コメント分析",
	RecommendationsTitle: "改善提案",
	GoodPointsTitle:      "良かった点",
	ImprovementsTitle:    "改善点",
	NextActionsTitle:     "次回のアクション",

	StatMaxViewers:    "最大同時視聴者数",
	StatAvgViewers:    "平均視聴者数",
	StatTotalLikes:    "合計いいね数",
	StatTotalComments: "合計コメント数",
	StatTotalClicks:   "合計クリック数",

	ChartTimeline:   "時系列グラフ",
	ChartCommentPie: "コメント分類",

	PeakViewers:  "👥 同時視聴ユーザー数",
	PeakClicks:   "🖱️ 商品クリック数",
	PeakComments: "💬 チャット数",
	PeakLikes:    "❤️ いいね数",
	NoPeakData:   "ピークデータがありません",
	NoEventInfo:  "イベント情報なし",
	PeakLine:     "[%d分目] 値: %s (増加: +%s) — %s",

	CategoryCount: "%s件",
	ExamplesLabel: "例:",

	GoodPointsEmpty:   "データ不足のため、評価できません",
	ImprovementsEmpty: "現時点で大きな改善点は見つかりませんでした",

	GeneratedAt:   "生成日時",
	VideoDuration: "配信時間(分)",
	CommentTotal:  "分析コメント数",
}

var english = Catalog{
	Tag: language.English,

	ErrorPrefix: "error: ",

	UploadInProgress: "Uploading files...",
	UploadDone:       "Upload complete!",
	UploadFailed:     "Upload failed",
	MissingInputs:    "No file selected",

	AnalysisStages: []string{
		"Analyzing video... (1/4)",
		"Analyzing data... (2/4)",
		"Classifying comments... (3/4)",
		"Generating report... (4/4)",
	},
	AnalysisDone:   "Analysis complete!",
	AnalysisFailed: "Analysis failed",

	SummaryTitle:         "Summary",
	ChartsTitle:          "Charts",
	PeaksTitle:           "Peak analysis",
	CommentsTitle:        "Comment analysis",
	RecommendationsTitle: "Recommendations",
	GoodPointsTitle:      "Good points",
	ImprovementsTitle:    "Improvements",
	NextActionsTitle:     "Next actions",

	StatMaxViewers:    "Max concurrent viewers",
	StatAvgViewers:    "Average viewers",
	StatTotalLikes:    "Total likes",
	StatTotalComments: "Total comments",
	StatTotalClicks:   "Total clicks",

	ChartTimeline:   "Timeline",
	ChartCommentPie: "Comment distribution",

	PeakViewers:  "👥 Concurrent viewers",
	PeakClicks:   "🖱️ Product clicks",
	PeakComments: "💬 Chat messages",
	PeakLikes:    "❤️ Likes",
	NoPeakData:   "No peak data",
	NoEventInfo:  "No event information",
	PeakLine:     "[minute %d] value %s (increase: +%s) — %s",

	CategoryCount: "%s",
	ExamplesLabel: "Examples:",

	GoodPointsEmpty:   "Not enough data to evaluate",
	ImprovementsEmpty: "No major issues found",

	GeneratedAt:   "Generated at",
	VideoDuration: "Duration (min)",
	CommentTotal:  "Comments analyzed",
}

// For returns the catalog for a locale name; unknown names fall back to Japanese.
func For(name string) Catalog {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "en", "en-us", "english":
		return english
	default:
		return japanese
	}
}

// Default returns the Japanese catalog.
func Default() Catalog {
	return japanese
}

// Number formats v with the catalog's thousands separators.
// Integral values print without a fraction; others keep up to three fraction digits.
func (c Catalog) Number(v float64) string {
	p := message.NewPrinter(c.Tag)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return p.Sprintf("%d", 0)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// Round rounds half up, matching how the report values have always been displayed
// (2.5 -> 3, -2.5 -> -2).
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Floor(v + 0.5)
}
