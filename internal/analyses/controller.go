// Package analyses runs server-side analysis for an uploaded session while showing
// simulated progress.
package analyses

import (
	"context"
	"strings"
	"time"

	"streamreport/internal/backend"
	"streamreport/internal/locale"
	"streamreport/internal/presenter"
	"streamreport/internal/report"
	"streamreport/internal/session"
	"streamreport/internal/shared/metrics"
	"streamreport/internal/shared/telemetry"
)

// Analyzer issues the analyze request.
type Analyzer interface {
	Analyze(ctx context.Context, sessionID string) (report.Report, error)
}

// Controller runs the analysis stage.
type Controller struct {
	analyzer  Analyzer
	stage     presenter.Stage
	catalog   locale.Catalog
	interval  time.Duration
	newTicker func(time.Duration) ticker
}

// NewController builds a Controller. interval <= 0 uses DefaultInterval.
func NewController(analyzer Analyzer, stage presenter.Stage, cat locale.Catalog, interval time.Duration) *Controller {
	return &Controller{
		analyzer: analyzer,
		stage:    stage,
		catalog:  cat,
		interval: interval,
	}
}

// Run issues exactly one analyze request for sess. The progress simulation is stopped
// before Run returns on every path.
func (c *Controller) Run(ctx context.Context, sess session.Session) (report.Report, error) {
	c.stage.Begin()
	metrics.IncAnalysisStarted()

	if strings.TrimSpace(sess.ID) == "" {
		return report.Report{}, c.fail(&AnalysisError{Message: c.catalog.AnalysisFailed, Cause: ErrNoSession}, sess)
	}

	telemetry.Info("analysis.started", map[string]any{"session_id": sess.ID})
	start := time.Now()
	rep, err := c.analyze(ctx, sess)
	elapsed := time.Since(start)
	metrics.ObserveAnalysisDurationMs(float64(elapsed.Milliseconds()))

	if err != nil {
		msg := backend.Message(err, c.catalog.AnalysisFailed)
		return report.Report{}, c.fail(&AnalysisError{Message: msg, Cause: err}, sess)
	}

	metrics.IncAnalysisCompleted()
	c.stage.Update(100, c.catalog.AnalysisDone)
	telemetry.Info("analysis.completed", map[string]any{
		"session_id":  sess.ID,
		"duration_ms": elapsed.Milliseconds(),
	})
	return rep, nil
}

func (c *Controller) analyze(ctx context.Context, sess session.Session) (report.Report, error) {
	sim := &Simulator{
		Interval: c.interval,
		Stages:   c.catalog.AnalysisStages,
		Sink: func(_ int, text string) {
			c.stage.Update(-1, text)
		},
		newTicker: c.newTicker,
	}
	stop := sim.Start(ctx)
	defer stop()
	return c.analyzer.Analyze(ctx, sess.ID)
}

func (c *Controller) fail(aerr *AnalysisError, sess session.Session) error {
	metrics.IncAnalysisFailed()
	fields := map[string]any{
		"session_id": sess.ID,
		"err":        aerr.Message,
	}
	if aerr.Cause != nil {
		fields["cause"] = aerr.Cause
	}
	telemetry.Error("analysis.failed", fields)
	c.stage.Fail(aerr.Message)
	return aerr
}
