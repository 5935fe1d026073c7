package db

import (
	"context"
	"io/fs"
	"sort"
	"strings"
	"testing"
)

func TestRunMigrationsNilDatabase(t *testing.T) {
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("expected no-op for nil database, got %v", err)
	}
}

func TestMigrationsLeaveReportAsPlainJSON(t *testing.T) {
	names, err := fs.Glob(migrationFiles, migrationDir+"/*.sql")
	if err != nil || len(names) == 0 {
		t.Fatalf("no embedded migrations: %v", err)
	}
	sort.Strings(names)

	// Only the Up halves count; the last one to set the report column type wins.
	var last string
	for _, name := range names {
		data, err := fs.ReadFile(migrationFiles, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		up, _, _ := strings.Cut(string(data), "-- +goose Down")
		for _, line := range strings.Split(up, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "report "):
				last = strings.Fields(line)[1]
			case strings.Contains(line, "ALTER COLUMN report TYPE "):
				after := line[strings.Index(line, "TYPE ")+len("TYPE "):]
				last = strings.Fields(after)[0]
			}
		}
	}
	if last != "JSON" {
		t.Fatalf("report column ends as %q, want JSON so key order is kept", last)
	}
}
