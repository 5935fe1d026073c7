package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name string
	help string
	v    atomic.Uint64
}

func (c *counter) inc() { c.v.Add(1) }

var (
	uploadStarted       = &counter{name: "upload_started_total", help: "Uploads submitted by the client"}
	uploadFailed        = &counter{name: "upload_failed_total", help: "Uploads rejected or failed in transport"}
	analysisStarted     = &counter{name: "analysis_started_total", help: "Analyses requested by the client"}
	analysisCompleted   = &counter{name: "analysis_completed_total", help: "Analyses that returned a report"}
	analysisFailed      = &counter{name: "analysis_failed_total", help: "Analyses that ended in an error"}
	reportSectionFailed = &counter{name: "report_section_failed_total", help: "Report sections replaced by their fallback"}
	stubSessions        = &counter{name: "stub_sessions_created_total", help: "Upload sessions created by the stub backend"}
	stubReports         = &counter{name: "stub_reports_built_total", help: "Reports built by the stub backend"}

	counters = []*counter{
		uploadStarted, uploadFailed,
		analysisStarted, analysisCompleted, analysisFailed,
		reportSectionFailed,
		stubSessions, stubReports,
	}

	analysisDuration = newHistogram("analysis_duration_ms", "Analysis round trip in milliseconds",
		[]float64{500, 1000, 3000, 5000, 10000, 30000, 60000, 120000, 300000})
)

func IncUploadStarted()       { uploadStarted.inc() }
func IncUploadFailed()        { uploadFailed.inc() }
func IncAnalysisStarted()     { analysisStarted.inc() }
func IncAnalysisCompleted()   { analysisCompleted.inc() }
func IncAnalysisFailed()      { analysisFailed.inc() }
func IncReportSectionFailed() { reportSectionFailed.inc() }
func IncStubSession()         { stubSessions.inc() }
func IncStubReport()          { stubReports.inc() }

// ObserveAnalysisDurationMs records one analysis round trip. Negative values count as 0.
func ObserveAnalysisDurationMs(ms float64) {
	if ms < 0 {
		ms = 0
	}
	analysisDuration.observe(ms)
}

// Handler serves Render in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render returns every counter followed by the duration histogram.
func Render() string {
	var buf bytes.Buffer
	for _, c := range counters {
		writeHeader(&buf, c.name, c.help, "counter")
		fmt.Fprintf(&buf, "%s %d\n", c.name, c.v.Load())
	}
	analysisDuration.write(&buf)
	return buf.String()
}

type histogram struct {
	name   string
	help   string
	bounds []float64

	mu     sync.Mutex
	counts []uint64
	sum    float64
	total  uint64
}

func newHistogram(name, help string, bounds []float64) *histogram {
	return &histogram{name: name, help: help, bounds: bounds, counts: make([]uint64, len(bounds))}
}

// observe files ms under the first bound that holds it; write accumulates.
func (h *histogram) observe(ms float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total++
	h.sum += ms
	for i, bound := range h.bounds {
		if ms <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) write(buf *bytes.Buffer) {
	h.mu.Lock()
	counts := append([]uint64(nil), h.counts...)
	sum, total := h.sum, h.total
	h.mu.Unlock()

	writeHeader(buf, h.name, h.help, "histogram")
	var cumulative uint64
	for i, bound := range h.bounds {
		cumulative += counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=%q} %d\n", h.name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", h.name, total)
	fmt.Fprintf(buf, "%s_sum %s\n", h.name, formatFloat(sum))
	fmt.Fprintf(buf, "%s_count %d\n", h.name, total)
}

func writeHeader(buf *bytes.Buffer, name, help, kind string) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
