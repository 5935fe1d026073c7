// Package report shapes an analysis report into presentation-ready sections.
//
// The functions here are pure: they default missing data, round and format numbers, pick
// fallbacks, and fix ordering. Rendering to a concrete surface lives in report/render.
package report

import (
	"fmt"

	"streamreport/internal/locale"
	"streamreport/internal/shared/metrics"
	"streamreport/internal/shared/telemetry"
)

// Section names used in failure records and logs.
const (
	SectionSummary         = "summary"
	SectionCharts          = "charts"
	SectionPeaks           = "peaks"
	SectionComments        = "comments"
	SectionRecommendations = "recommendations"
)

// DefaultAssetRoot is where the backend serves per-session generated files.
const DefaultAssetRoot = "/static/uploads"

// BuildOptions controls how a report is shaped.
type BuildOptions struct {
	SessionID string
	AssetRoot string
	Catalog   locale.Catalog
}

// View is a report decomposed into five independent sections.
type View struct {
	SessionID       string              `json:"sessionId" yaml:"session_id"`
	GeneratedAt     string              `json:"generatedAt,omitempty" yaml:"generated_at,omitempty"`
	VideoDuration   int                 `json:"videoDuration,omitempty" yaml:"video_duration,omitempty"`
	CommentTotal    int                 `json:"commentTotal,omitempty" yaml:"comment_total,omitempty"`
	Titles          Titles              `json:"titles" yaml:"titles"`
	Summary         []StatEntry         `json:"summary" yaml:"summary"`
	Charts          []ChartSlot         `json:"charts" yaml:"charts"`
	Peaks           PeakSection         `json:"peaks" yaml:"peaks"`
	Comments        []CategoryView      `json:"comments" yaml:"comments"`
	Recommendations RecommendationLists `json:"recommendations" yaml:"recommendations"`
	Failures        []SectionFailure    `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Titles are the localized section headings.
type Titles struct {
	Summary         string `json:"summary" yaml:"summary"`
	Charts          string `json:"charts" yaml:"charts"`
	Peaks           string `json:"peaks" yaml:"peaks"`
	Comments        string `json:"comments" yaml:"comments"`
	Recommendations string `json:"recommendations" yaml:"recommendations"`
	GoodPoints      string `json:"goodPoints" yaml:"good_points"`
	Improvements    string `json:"improvements" yaml:"improvements"`
	NextActions     string `json:"nextActions" yaml:"next_actions"`
	GeneratedAt     string `json:"generatedAt" yaml:"generated_at"`
	VideoDuration   string `json:"videoDuration" yaml:"video_duration"`
	CommentTotal    string `json:"commentTotal" yaml:"comment_total"`
}

// SectionFailure records a section that could not be shaped and was left at its fallback.
type SectionFailure struct {
	Section string `json:"section" yaml:"section"`
	Err     string `json:"error" yaml:"error"`
}

// Build runs the five shaping passes. A failing pass leaves its section at the empty
// fallback and does not affect the others.
func Build(r Report, opts BuildOptions) View {
	cat := opts.Catalog
	if len(cat.AnalysisStages) == 0 {
		cat = locale.Default()
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = r.SessionID
	}

	v := emptyView(sessionID, cat)
	v.GeneratedAt = r.GeneratedAt
	v.VideoDuration = r.VideoDuration
	v.CommentTotal = r.CommentAnalysis.Total

	runPass(&v, SectionSummary, func() {
		v.Summary = SummaryEntries(r.SummaryStats, cat)
	})
	runPass(&v, SectionCharts, func() {
		v.Charts = ChartSlots(r.Charts, opts.AssetRoot, sessionID, cat)
	})
	runPass(&v, SectionPeaks, func() {
		v.Peaks = BuildPeakSection(r.PeakAnalysis, cat)
	})
	runPass(&v, SectionComments, func() {
		v.Comments = CommentCategories(r.CommentAnalysis, cat)
	})
	runPass(&v, SectionRecommendations, func() {
		v.Recommendations = BuildRecommendationLists(r.Recommendations, cat)
	})

	return v
}

// emptyView holds every section at its fallback; passes overwrite what they shape.
func emptyView(sessionID string, cat locale.Catalog) View {
	return View{
		SessionID:       sessionID,
		Titles:          titlesFor(cat),
		Summary:         []StatEntry{},
		Charts:          []ChartSlot{},
		Peaks:           emptyPeakSection(cat),
		Comments:        []CategoryView{},
		Recommendations: BuildRecommendationLists(Recommendations{}, cat),
	}
}

func runPass(v *View, section string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			msg := fmt.Sprint(rec)
			v.Failures = append(v.Failures, SectionFailure{Section: section, Err: msg})
			metrics.IncReportSectionFailed()
			telemetry.Error("report.section.failed", map[string]any{
				"section":    section,
				"session_id": v.SessionID,
				"err":        msg,
			})
		}
	}()
	fn()
}

func titlesFor(cat locale.Catalog) Titles {
	return Titles{
		Summary:         cat.SummaryTitle,
		Charts:          cat.ChartsTitle,
		Peaks:           cat.PeaksTitle,
		Comments:        cat.CommentsTitle,
		Recommendations: cat.RecommendationsTitle,
		GoodPoints:      cat.GoodPointsTitle,
		Improvements:    cat.ImprovementsTitle,
		NextActions:     cat.NextActionsTitle,
		GeneratedAt:     cat.GeneratedAt,
		VideoDuration:   cat.VideoDuration,
		CommentTotal:    cat.CommentTotal,
	}
}
