// Package bootstrap wires configuration into a ready-to-run client.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"streamreport/internal/analyses"
	"streamreport/internal/backend"
	"streamreport/internal/exports"
	"streamreport/internal/history"
	"streamreport/internal/locale"
	"streamreport/internal/presenter"
	"streamreport/internal/queue"
	"streamreport/internal/shared/config"
	"streamreport/internal/shared/storage/db"
	"streamreport/internal/shared/storage/object"
	localstore "streamreport/internal/shared/storage/object/local"
	s3store "streamreport/internal/shared/storage/object/s3"
	"streamreport/internal/shared/telemetry"
	"streamreport/internal/uploads"
	"streamreport/internal/workflow"
)

// App holds the wired client. DB and Store are nil when not configured.
type App struct {
	Config   config.Config
	Catalog  locale.Catalog
	Client   *backend.Client
	DB       *sql.DB
	Store    object.ObjectStore
	History  history.Repo
	Errors   *presenter.Console
	Progress *presenter.ConsoleProgress

	UploadTrigger  *presenter.Trigger
	AnalyzeTrigger *presenter.Trigger

	Uploads  *uploads.Controller
	Analyses *analyses.Controller
	Workflow *workflow.Workflow
}

// Build prepares every dependency. Errors and progress are written to surface.
func Build(ctx context.Context, cfg config.Config, surface io.Writer) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	cat := locale.For(cfg.Locale)

	client, err := backend.NewClient(backend.Options{
		BaseURL:   cfg.APIBaseURL,
		Token:     cfg.APIToken,
		Timeout:   cfg.RequestTimeout,
		AssetRoot: cfg.AssetRoot,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	app := &App{
		Config:         cfg,
		Catalog:        cat,
		Client:         client,
		DB:             sqlDB,
		Store:          store,
		Errors:         presenter.NewConsole(surface, cat.ErrorPrefix),
		Progress:       presenter.NewConsoleProgress(surface),
		UploadTrigger:  &presenter.Trigger{},
		AnalyzeTrigger: &presenter.Trigger{},
	}

	if sqlDB != nil {
		app.History = &history.PGRepo{DB: sqlDB}
	} else {
		app.History = history.NewMemoryRepo()
	}

	app.Uploads = uploads.NewController(client, presenter.Stage{
		Errors:   app.Errors,
		Trigger:  app.UploadTrigger,
		Progress: app.Progress,
	}, cat)
	app.Analyses = analyses.NewController(client, presenter.Stage{
		Errors:   app.Errors,
		Trigger:  app.AnalyzeTrigger,
		Progress: app.Progress,
	}, cat, cfg.ProgressInterval)

	var notifier queue.Client
	if strings.TrimSpace(cfg.ReportQueueURL) != "" {
		sqsClient, err := queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.ReportQueueURL)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		notifier = sqsClient
	}

	var exporter *exports.Exporter
	if store != nil {
		exporter = exports.NewExporter(store, client)
	}

	app.Workflow = workflow.New(workflow.Options{
		Uploads:      app.Uploads,
		Analyses:     app.Analyses,
		Reports:      client,
		History:      app.History,
		Exporter:     exporter,
		ExportFormat: cfg.OutputFormat,
		Notifier:     notifier,
		Catalog:      cat,
		AssetRoot:    cfg.AssetRoot,
		Triggers:     []*presenter.Trigger{app.UploadTrigger, app.AnalyzeTrigger},
	})

	return app, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Debug("bootstrap.history.memory", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultClientOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.history.memory", map[string]any{
				"reason": "database unavailable",
				"err":    err,
			})
			return nil, nil
		}
		return nil, fmt.Errorf("history database: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
