package report

import (
	"encoding/json"
	"errors"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"streamreport/internal/shared/telemetry"
)

// Report is the analytics payload produced by server-side analysis.
// Every section is optional; decoding never fails because a section is missing or malformed.
type Report struct {
	SessionID       string                                      `json:"session_id,omitempty"`
	GeneratedAt     string                                      `json:"generated_at,omitempty"`
	VideoDuration   int                                         `json:"video_duration,omitempty"`
	SummaryStats    SummaryStats                                `json:"summary_stats"`
	Charts          Charts                                      `json:"charts"`
	PeakAnalysis    *orderedmap.OrderedMap[string, []PeakEvent] `json:"peak_analysis"`
	CommentAnalysis CommentAnalysis                             `json:"comment_analysis"`
	Recommendations Recommendations                             `json:"recommendations"`
}

// SummaryStats maps metric names (max_viewers, avg_viewers, ...) to numeric values.
type SummaryStats map[string]float64

// Charts maps a chart kind (timeline, comment_pie) to a generated asset filename.
type Charts map[string]string

// PeakEvent is a detected spike at a given minute of the stream.
type PeakEvent struct {
	Minute           int     `json:"minute"`
	Value            float64 `json:"value"`
	Increase         float64 `json:"increase"`
	EventDescription string  `json:"event_description"`
}

// CommentAnalysis holds per-category comment counts and example comments.
type CommentAnalysis struct {
	Categories *orderedmap.OrderedMap[string, int] `json:"categories"`
	Examples   map[string][]string                 `json:"examples"`
	Total      int                                 `json:"total,omitempty"`
}

// Recommendations are the three advice lists of a report.
type Recommendations struct {
	GoodPoints   []string `json:"good_points"`
	Improvements []string `json:"improvements"`
	NextActions  []string `json:"next_actions"`
}

var errNotObject = errors.New("report payload is not a JSON object")

// Decode parses a report payload. Only a payload that is not a JSON object is an error.
func Decode(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, err
	}
	return r, nil
}

// UnmarshalJSON decodes each section independently; a section that cannot be decoded
// is left empty and logged.
func (r *Report) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return errNotObject
	}
	if top == nil {
		return errNotObject
	}

	var out Report
	decodeSection(top, "session_id", &out.SessionID)
	decodeSection(top, "generated_at", &out.GeneratedAt)
	decodeSection(top, "video_duration", &out.VideoDuration)
	decodeSection(top, "summary_stats", &out.SummaryStats)
	decodeSection(top, "charts", &out.Charts)
	decodeSection(top, "peak_analysis", &out.PeakAnalysis)
	decodeSection(top, "comment_analysis", &out.CommentAnalysis)
	decodeSection(top, "recommendations", &out.Recommendations)
	*r = out
	return nil
}

func decodeSection(top map[string]json.RawMessage, key string, dst any) {
	raw, ok := top[key]
	if !ok || isNull(raw) {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		telemetry.Warn("report.section.decode_failed", map[string]any{
			"section": key,
			"err":     err.Error(),
		})
	}
}

// UnmarshalJSON keeps numeric entries and drops anything else.
func (s *SummaryStats) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(SummaryStats, len(raw))
	for k, v := range raw {
		var f float64
		if err := json.Unmarshal(v, &f); err != nil || isNull(v) {
			continue
		}
		out[k] = f
	}
	*s = out
	return nil
}

// UnmarshalJSON keeps non-empty string entries; null or blank filenames mean "no chart".
func (c *Charts) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Charts, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out[k] = s
	}
	*c = out
	return nil
}

// UnmarshalJSON accepts fractional minutes (truncated) since the series index is numeric server side.
func (p *PeakEvent) UnmarshalJSON(data []byte) error {
	var aux struct {
		Minute           float64 `json:"minute"`
		Value            float64 `json:"value"`
		Increase         float64 `json:"increase"`
		EventDescription string  `json:"event_description"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = PeakEvent{
		Minute:           int(aux.Minute),
		Value:            aux.Value,
		Increase:         aux.Increase,
		EventDescription: aux.EventDescription,
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
