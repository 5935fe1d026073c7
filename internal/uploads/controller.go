// Package uploads submits the three input files and starts a session.
package uploads

import (
	"context"
	"strings"

	"streamreport/internal/backend"
	"streamreport/internal/locale"
	"streamreport/internal/presenter"
	"streamreport/internal/session"
	"streamreport/internal/shared/metrics"
	"streamreport/internal/shared/telemetry"
)

// Uploader sends the multipart upload.
type Uploader interface {
	Upload(ctx context.Context, parts []backend.Part) (string, error)
}

// Controller runs the upload stage.
type Controller struct {
	uploader Uploader
	stage    presenter.Stage
	catalog  locale.Catalog
}

func NewController(uploader Uploader, stage presenter.Stage, cat locale.Catalog) *Controller {
	return &Controller{uploader: uploader, stage: stage, catalog: cat}
}

// CanSubmit reports whether sel holds all three inputs.
func (c *Controller) CanSubmit(sel Selection) bool {
	return sel.Complete()
}

// Submit uploads the selection in a single attempt. Every failure is shown exactly once
// on the stage's error surface and returned as *UploadError.
func (c *Controller) Submit(ctx context.Context, sel Selection) (session.Session, error) {
	c.stage.Begin()
	metrics.IncUploadStarted()

	if missing := sel.Missing(); len(missing) > 0 {
		return session.Session{}, c.fail(&UploadError{Message: c.catalog.MissingInputs, Cause: ErrIncompleteSelection}, map[string]any{
			"missing": strings.Join(missing, ","),
		})
	}

	c.stage.Update(30, c.catalog.UploadInProgress)

	parts := make([]backend.Part, 0, 3)
	for _, f := range sel.fields() {
		rc, err := f.input.Open()
		if err != nil {
			return session.Session{}, c.fail(&UploadError{Message: err.Error(), Cause: err}, map[string]any{"field": f.name})
		}
		defer rc.Close()
		parts = append(parts, backend.Part{Field: f.name, Filename: f.input.Name(), Content: rc})
	}

	telemetry.Info("upload.started", map[string]any{
		"video":    sel.Video.Name(),
		"data":     sel.Data.Name(),
		"comments": sel.Comments.Name(),
	})

	id, err := c.uploader.Upload(ctx, parts)
	if err != nil {
		msg := backend.Message(err, c.catalog.UploadFailed)
		return session.Session{}, c.fail(&UploadError{Message: msg, Cause: err}, nil)
	}

	c.stage.Update(100, c.catalog.UploadDone)
	telemetry.Info("upload.completed", map[string]any{"session_id": id})
	return session.Session{ID: id}, nil
}

func (c *Controller) fail(uerr *UploadError, fields map[string]any) error {
	metrics.IncUploadFailed()
	if fields == nil {
		fields = map[string]any{}
	}
	fields["err"] = uerr.Message
	if uerr.Cause != nil {
		fields["cause"] = uerr.Cause
	}
	telemetry.Error("upload.failed", fields)
	c.stage.Fail(uerr.Message)
	return uerr
}
