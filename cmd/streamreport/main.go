package main

// Upload a stream recording with its data sheets and print the analysis report:
//   go run ./cmd/streamreport run -video live.mp4 -data data.csv -comments comments.csv
//   go run ./cmd/streamreport show -session 20240501_103000_ab12cd34 -format html > report.html
//   go run ./cmd/streamreport history -limit 10

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"streamreport/internal/backend"
	"streamreport/internal/bootstrap"
	"streamreport/internal/report/render"
	"streamreport/internal/shared/config"
	"streamreport/internal/shared/metrics"
	"streamreport/internal/shared/telemetry"
	"streamreport/internal/uploads"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	telemetry.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "run":
		return runReport(ctx, cfg, args[1:], stdout, stderr)
	case "show":
		return showReport(ctx, cfg, args[1:], stdout, stderr)
	case "history":
		return listHistory(ctx, cfg, args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: streamreport <run|show|history> [flags]")
	fmt.Fprintln(w, "  run      -video FILE -data FILE -comments FILE [-format F] [-metrics]")
	fmt.Fprintln(w, "  show     -session ID [-format F]")
	fmt.Fprintln(w, "  history  [-limit N] [-offset N]")
}

func runReport(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	video := fs.String("video", "", "stream recording (mp4, mov, avi, mkv)")
	data := fs.String("data", "", "stream metrics sheet (csv, xlsx, xls)")
	comments := fs.String("comments", "", "comment sheet (csv, xlsx, xls)")
	format := fs.String("format", cfg.OutputFormat, "output format: text, html, json, yaml")
	showMetrics := fs.Bool("metrics", false, "print client metrics to stderr on exit")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	renderFn, _, err := render.ForFormat(*format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if *showMetrics {
		defer func() { fmt.Fprint(stderr, metrics.Render()) }()
	}

	app, err := bootstrap.Build(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "setup: %v\n", err)
		return exitFail
	}
	defer app.Close()

	sel := uploads.Selection{
		Video:    fileInput(*video),
		Data:     fileInput(*data),
		Comments: fileInput(*comments),
	}
	if !app.Uploads.CanSubmit(sel) {
		fmt.Fprintf(stderr, "%s%s: %v\n", app.Catalog.ErrorPrefix, app.Catalog.MissingInputs, sel.Missing())
		return exitUsage
	}

	if _, err := app.Workflow.Upload(ctx, sel); err != nil {
		return exitFail
	}

	// Single attempt; a failed analysis ends the run.
	view, err := app.Workflow.Analyze(ctx)
	if err != nil {
		return exitFail
	}
	app.Progress.Hide()
	if err := renderFn(stdout, view); err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return exitFail
	}
	return exitOK
}

func showReport(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sessionID := fs.String("session", "", "session id of an earlier run")
	format := fs.String("format", cfg.OutputFormat, "output format: text, html, json, yaml")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *sessionID == "" {
		fmt.Fprintln(stderr, "-session is required")
		return exitUsage
	}
	renderFn, _, err := render.ForFormat(*format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	app, err := bootstrap.Build(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "setup: %v\n", err)
		return exitFail
	}
	defer app.Close()

	view, err := app.Workflow.Show(ctx, *sessionID)
	if err != nil {
		app.Errors.Show(backend.Message(err, err.Error()))
		return exitFail
	}
	if err := renderFn(stdout, view); err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return exitFail
	}
	return exitOK
}

func listHistory(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("limit", 20, "maximum runs to list")
	offset := fs.Int("offset", 0, "runs to skip")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	app, err := bootstrap.Build(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "setup: %v\n", err)
		return exitFail
	}
	defer app.Close()

	records, err := app.Workflow.History(ctx, *limit, *offset)
	if err != nil {
		fmt.Fprintf(stderr, "history: %v\n", err)
		return exitFail
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tGENERATED AT\tDURATION\tARCHIVED")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", rec.SessionID, rec.GeneratedAt, rec.VideoDuration, rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if err := tw.Flush(); err != nil {
		return exitFail
	}
	return exitOK
}

func fileInput(path string) uploads.Input {
	if path == "" {
		return nil
	}
	return uploads.FileInput{Path: path}
}
