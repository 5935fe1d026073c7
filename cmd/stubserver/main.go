package main

import (
	"os"
	"strings"

	"streamreport/internal/shared/config"
	"streamreport/internal/shared/telemetry"
	"streamreport/internal/stub"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.LogLevel)
	defer telemetry.Sync()

	srv := stub.New(stub.Options{
		Dir:          cfg.StubStoreDir,
		AnalyzeDelay: cfg.StubAnalyzeDelay,
		Token:        cfg.APIToken,
	})

	addr := ":" + strings.TrimPrefix(cfg.StubPort, ":")
	telemetry.Info("stub.start", map[string]any{
		"addr":      addr,
		"store_dir": cfg.StubStoreDir,
	})

	if err := srv.Router().Run(addr); err != nil {
		telemetry.Error("stub.server_error", map[string]any{"err": err})
		telemetry.Sync()
		os.Exit(1)
	}
}
