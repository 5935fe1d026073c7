// Package exports writes a finished report bundle to an object store.
package exports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"

	"streamreport/internal/report"
	"streamreport/internal/report/render"
	"streamreport/internal/shared/storage/object"
	"streamreport/internal/shared/telemetry"
	"streamreport/internal/shared/util"
)

// AssetFetcher downloads generated chart files.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, sessionID, filename string) (io.ReadCloser, error)
}

// Bundle is what gets exported for one session.
type Bundle struct {
	Report report.Report
	View   report.View
	Format string
}

// Exporter stores bundles under {sessionId}/.
type Exporter struct {
	store  object.ObjectStore
	assets AssetFetcher
}

// NewExporter builds an Exporter. assets may be nil, in which case charts are skipped.
func NewExporter(store object.ObjectStore, assets AssetFetcher) *Exporter {
	return &Exporter{store: store, assets: assets}
}

// Export writes report.json, the rendered report and every present chart. Chart download
// failures are logged and skipped; failures writing the report itself are returned.
func (e *Exporter) Export(ctx context.Context, b Bundle) ([]string, error) {
	sessionID := b.View.SessionID
	if sessionID == "" {
		sessionID = b.Report.SessionID
	}
	dir, err := util.SanitizeFileName(sessionID)
	if err != nil {
		return nil, fmt.Errorf("export session id: %w", err)
	}

	var keys []string

	raw, err := json.MarshalIndent(b.Report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	key := path.Join(dir, "report.json")
	if _, err := e.store.SaveWithKey(ctx, key, "application/json", bytes.NewReader(raw)); err != nil {
		return keys, fmt.Errorf("save %s: %w", key, err)
	}
	keys = append(keys, key)

	renderFn, ext, err := render.ForFormat(b.Format)
	if err != nil {
		return keys, err
	}
	if ext != "json" {
		var buf bytes.Buffer
		if err := renderFn(&buf, b.View); err != nil {
			return keys, fmt.Errorf("render %s: %w", ext, err)
		}
		key := path.Join(dir, "report."+ext)
		if _, err := e.store.SaveWithKey(ctx, key, render.ContentType(ext), &buf); err != nil {
			return keys, fmt.Errorf("save %s: %w", key, err)
		}
		keys = append(keys, key)
	}

	if e.assets == nil {
		return keys, nil
	}
	for _, slot := range b.View.Charts {
		if !slot.Present() {
			continue
		}
		key, err := e.exportChart(ctx, sessionID, dir, slot.File)
		if err != nil {
			telemetry.Warn("export.chart_failed", map[string]any{
				"session_id": sessionID,
				"file":       slot.File,
				"err":        err,
			})
			continue
		}
		keys = append(keys, key)
	}

	telemetry.Info("export.saved", map[string]any{
		"session_id": sessionID,
		"objects":    len(keys),
	})
	return keys, nil
}

func (e *Exporter) exportChart(ctx context.Context, sessionID, dir, file string) (string, error) {
	name, err := util.SanitizeFileName(file)
	if err != nil {
		return "", err
	}
	rc, err := e.assets.FetchAsset(ctx, sessionID, file)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := path.Join(dir, name)
	if _, err := e.store.SaveWithKey(ctx, key, contentType, rc); err != nil {
		return "", err
	}
	return key, nil
}
