package stub

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Metric columns recognised in a stream data sheet, in detection order.
const (
	MetricViewers  = "viewers"
	MetricLikes    = "likes"
	MetricComments = "comments"
	MetricClicks   = "clicks"
)

var metricOrder = []string{MetricViewers, MetricLikes, MetricComments, MetricClicks}

var errNoCommentColumn = errors.New("コメント列が見つかりません")

// Series is a per-minute metrics table. Columns only holds metrics present in the sheet.
type Series struct {
	Minutes []int
	Columns map[string][]float64
}

// Len returns the number of rows.
func (s Series) Len() int { return len(s.Minutes) }

// Has reports whether the metric was detected in the sheet.
func (s Series) Has(metric string) bool {
	_, ok := s.Columns[metric]
	return ok
}

var (
	viewerPatterns  = []string{"視聴", "viewer", "watch", "同時", "concurrent", "ユーザー"}
	likePatterns    = []string{"いいね", "like", "favorite", "heart"}
	commentPatterns = []string{"コメント", "comment", "chat", "チャット"}
	clickPatterns   = []string{"クリック", "click", "商品", "product"}
)

// ParseSeries reads a CSV metrics sheet. Headers are matched loosely; a later metric
// match overrides an earlier one for the same column. Non-numeric cells count as zero
// and rows are indexed by position when no minute column exists.
func ParseSeries(r io.Reader) (Series, error) {
	records, err := readCSV(r)
	if err != nil {
		return Series{}, err
	}
	if len(records) == 0 {
		return Series{}, errors.New("データが空です")
	}

	header := records[0]
	roles := make([]string, len(header))
	for i, col := range header {
		lower := strings.ToLower(col)
		if strings.Contains(col, "分") || strings.Contains(lower, "minute") {
			roles[i] = "minute"
		}
		if containsAny(lower, viewerPatterns) {
			roles[i] = MetricViewers
		}
		if containsAny(lower, likePatterns) {
			roles[i] = MetricLikes
		}
		if containsAny(lower, commentPatterns) {
			roles[i] = MetricComments
		}
		if containsAny(lower, clickPatterns) {
			roles[i] = MetricClicks
		}
	}

	out := Series{Columns: make(map[string][]float64)}
	for i, role := range roles {
		if role != "" && role != "minute" {
			if _, dup := out.Columns[role]; dup {
				roles[i] = ""
				continue
			}
			out.Columns[role] = nil
		}
	}

	for idx, row := range records[1:] {
		minute := idx
		for i, role := range roles {
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			switch role {
			case "":
			case "minute":
				if v, err := strconv.ParseFloat(cell, 64); err == nil {
					minute = int(v)
				}
			default:
				v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
				if err != nil {
					v = 0
				}
				out.Columns[role] = append(out.Columns[role], v)
			}
		}
		out.Minutes = append(out.Minutes, minute)
	}
	return out, nil
}

var commentColumnPriority = []string{"original_text", "original", "text", "コメント", "comment", "message", "本文", "content"}

// ParseComments reads a CSV comment sheet and returns the non-blank comment texts.
// The comment column is the header matching the most specific known pattern.
func ParseComments(r io.Reader) ([]string, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errNoCommentColumn
	}

	best, bestRank := -1, len(commentColumnPriority)
	for i, col := range records[0] {
		lower := strings.ToLower(col)
		for rank, pattern := range commentColumnPriority {
			if strings.Contains(lower, pattern) {
				if rank < bestRank {
					best, bestRank = i, rank
				}
				break
			}
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w。利用可能な列: %s", errNoCommentColumn, strings.Join(records[0], ", "))
	}

	var out []string
	for _, row := range records[1:] {
		if best >= len(row) {
			continue
		}
		if text := strings.TrimSpace(row[best]); text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
