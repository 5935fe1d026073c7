// Package workflow sequences upload, analysis and report shaping for one session at a time.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"streamreport/internal/analyses"
	"streamreport/internal/exports"
	"streamreport/internal/history"
	"streamreport/internal/locale"
	"streamreport/internal/presenter"
	"streamreport/internal/queue"
	"streamreport/internal/report"
	"streamreport/internal/session"
	"streamreport/internal/shared/telemetry"
	"streamreport/internal/uploads"
)

var (
	// ErrNoSession is returned by Analyze before a successful upload.
	ErrNoSession = errors.New("no uploaded session")
	// ErrNotReported is returned by View before a successful analysis.
	ErrNotReported = errors.New("session has no report yet")
	// ErrSessionActive is returned by Upload while a session is in progress; Restart first.
	ErrSessionActive = errors.New("a session is already active")
	// ErrNoHistory is returned by History when no history store is configured.
	ErrNoHistory = errors.New("report history is not configured")
)

// ReportFetcher loads a stored report from the backend.
type ReportFetcher interface {
	FetchReport(ctx context.Context, sessionID string) (report.Report, error)
}

// Options wires a Workflow. History, Exporter and Reports are optional.
type Options struct {
	Uploads      *uploads.Controller
	Analyses     *analyses.Controller
	Reports      ReportFetcher
	History      history.Repo
	Exporter     *exports.Exporter
	ExportFormat string
	Notifier     queue.Client
	Catalog      locale.Catalog
	AssetRoot    string
	// Triggers are re-enabled on Restart.
	Triggers []*presenter.Trigger
}

// Workflow owns the session state of one run.
type Workflow struct {
	opts  Options
	state session.State
	now   func() time.Time
}

func New(opts Options) *Workflow {
	return &Workflow{opts: opts, now: time.Now}
}

// Stage returns the current workflow stage.
func (w *Workflow) Stage() session.Stage {
	return w.state.Stage()
}

// Upload submits sel and begins a new session.
func (w *Workflow) Upload(ctx context.Context, sel uploads.Selection) (session.Session, error) {
	if w.state.Stage() != session.StageIdle {
		return session.Session{}, ErrSessionActive
	}
	sess, err := w.opts.Uploads.Submit(ctx, sel)
	if err != nil {
		return session.Session{}, err
	}
	w.state.Begin(sess)
	return sess, nil
}

// Analyze runs analysis for the uploaded session and returns the shaped report.
// Archiving and exporting are best effort and never fail the stage.
func (w *Workflow) Analyze(ctx context.Context) (report.View, error) {
	sess, ok := w.state.Session()
	if !ok {
		return report.View{}, ErrNoSession
	}
	rep, err := w.opts.Analyses.Run(ctx, sess)
	if err != nil {
		return report.View{}, err
	}
	if rep.SessionID == "" {
		rep.SessionID = sess.ID
	}
	w.state.Complete(rep)

	view := w.build(rep)
	w.archive(ctx, rep)
	w.export(ctx, rep, view)
	w.notify(ctx, rep)
	return view, nil
}

// View reshapes the current report.
func (w *Workflow) View() (report.View, error) {
	rep, ok := w.state.Report()
	if !ok {
		return report.View{}, ErrNotReported
	}
	return w.build(rep), nil
}

// Show loads the report of an earlier session, from history when available and from the
// backend otherwise, and makes it the current report.
func (w *Workflow) Show(ctx context.Context, sessionID string) (report.View, error) {
	rep, err := w.load(ctx, sessionID)
	if err != nil {
		return report.View{}, err
	}
	if rep.SessionID == "" {
		rep.SessionID = sessionID
	}
	w.state.Reset()
	w.state.Begin(session.Session{ID: sessionID})
	w.state.Complete(rep)
	return w.build(rep), nil
}

// History lists archived runs, newest first.
func (w *Workflow) History(ctx context.Context, limit, offset int) ([]history.Record, error) {
	if w.opts.History == nil {
		return nil, ErrNoHistory
	}
	return w.opts.History.List(ctx, limit, offset)
}

// Restart discards the session and report and re-enables every stage trigger.
func (w *Workflow) Restart() {
	w.state.Reset()
	for _, t := range w.opts.Triggers {
		if t != nil {
			t.Enable()
		}
	}
}

func (w *Workflow) build(rep report.Report) report.View {
	return report.Build(rep, report.BuildOptions{
		SessionID: rep.SessionID,
		AssetRoot: w.opts.AssetRoot,
		Catalog:   w.opts.Catalog,
	})
}

func (w *Workflow) load(ctx context.Context, sessionID string) (report.Report, error) {
	if w.opts.History != nil {
		rec, err := w.opts.History.GetBySession(ctx, sessionID)
		switch {
		case err == nil:
			return rec.Decode()
		case !errors.Is(err, history.ErrNotFound):
			telemetry.Warn("history.lookup_failed", map[string]any{"session_id": sessionID, "err": err})
		}
	}
	if w.opts.Reports == nil {
		return report.Report{}, fmt.Errorf("report %s: %w", sessionID, history.ErrNotFound)
	}
	return w.opts.Reports.FetchReport(ctx, sessionID)
}

func (w *Workflow) archive(ctx context.Context, rep report.Report) {
	if w.opts.History == nil {
		return
	}
	rec, err := history.NewRecord(rep, w.now())
	if err == nil {
		err = w.opts.History.Create(ctx, rec)
	}
	if err != nil {
		telemetry.Error("history.save_failed", map[string]any{"session_id": rep.SessionID, "err": err})
		return
	}
	telemetry.Info("history.saved", map[string]any{"session_id": rep.SessionID, "id": rec.ID})
}

func (w *Workflow) export(ctx context.Context, rep report.Report, view report.View) {
	if w.opts.Exporter == nil {
		return
	}
	if _, err := w.opts.Exporter.Export(ctx, exports.Bundle{Report: rep, View: view, Format: w.opts.ExportFormat}); err != nil {
		telemetry.Error("export.failed", map[string]any{"session_id": rep.SessionID, "err": err})
	}
}

func (w *Workflow) notify(ctx context.Context, rep report.Report) {
	if w.opts.Notifier == nil {
		return
	}
	msg := queue.NewReportReady(rep, uuid.NewString(), w.now())
	if err := w.opts.Notifier.Send(ctx, msg); err != nil {
		telemetry.Error("notify.failed", map[string]any{"session_id": rep.SessionID, "err": err})
		return
	}
	telemetry.Info("notify.sent", map[string]any{"session_id": rep.SessionID, "request_id": msg.RequestID})
}
