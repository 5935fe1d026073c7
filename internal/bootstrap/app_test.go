package bootstrap

import (
	"bytes"
	"context"
	"testing"
	"time"

	"streamreport/internal/history"
	"streamreport/internal/session"
	"streamreport/internal/shared/config"
	localstore "streamreport/internal/shared/storage/object/local"
)

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:              "dev",
		APIBaseURL:       "http://localhost:5000",
		AssetRoot:        "/static/uploads",
		ProgressInterval: time.Second,
		Locale:           "ja",
		OutputFormat:     "text",
		ObjectStoreType:  "none",
	}
}

func TestBuildDefaults(t *testing.T) {
	var surface bytes.Buffer
	app, err := Build(context.Background(), baseConfig(t), &surface)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	if app.DB != nil || app.Store != nil {
		t.Fatalf("expected no database or store, got %v %v", app.DB, app.Store)
	}
	if _, ok := app.History.(*history.MemoryRepo); !ok {
		t.Fatalf("expected in-memory history, got %T", app.History)
	}
	if app.Workflow.Stage() != session.StageIdle {
		t.Fatalf("expected idle workflow")
	}
	if !app.UploadTrigger.Enabled() || !app.AnalyzeTrigger.Enabled() {
		t.Fatalf("expected triggers enabled")
	}

	app.Errors.Show("boom")
	if got := surface.String(); got != "エラー: boom\n" {
		t.Fatalf("unexpected surface output %q", got)
	}
}

func TestBuildLocalStore(t *testing.T) {
	cfg := baseConfig(t)
	cfg.ObjectStoreType = "local"
	cfg.LocalStoreDir = t.TempDir()

	app, err := Build(context.Background(), cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := app.Store.(*localstore.Store); !ok {
		t.Fatalf("expected local store, got %T", app.Store)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "bad base url", mutate: func(c *config.Config) { c.APIBaseURL = "ftp://example" }},
		{name: "s3 without bucket", mutate: func(c *config.Config) { c.ObjectStoreType = "s3" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig(t)
			tc.mutate(&cfg)
			if _, err := Build(context.Background(), cfg, &bytes.Buffer{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestEnglishErrorPrefix(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Locale = "en"
	var surface bytes.Buffer
	app, err := Build(context.Background(), cfg, &surface)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	app.Errors.Show("boom")
	if got := surface.String(); got != "error: boom\n" {
		t.Fatalf("unexpected surface output %q", got)
	}
}
