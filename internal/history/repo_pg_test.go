package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"streamreport/internal/report"
)

var recordColumns = []string{"id", "session_id", "generated_at", "video_duration", "report", "created_at"}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rec := Record{
		ID:            "run-1",
		SessionID:     "20240501_201500",
		VideoDuration: 42,
		Report:        []byte(`{"summary_stats":{}}`),
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO report_runs").
		WithArgs(
			rec.ID,
			rec.SessionID,
			nil, // generated_at
			rec.VideoDuration,
			sqlmock.AnyArg(), // report
			rec.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetBySession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2024, 5, 1, 20, 16, 0, 0, time.UTC)

	mock.ExpectQuery("FROM report_runs").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("run-1", "abc", "2024-05-01 20:15:00", 42, []byte(`{"charts":{"timeline":"t.png"}}`), created))

	rec, err := repo.GetBySession(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetBySession: %v", err)
	}
	if rec.ID != "run-1" || rec.GeneratedAt != "2024-05-01 20:15:00" || !rec.CreatedAt.Equal(created) {
		t.Fatalf("unexpected record %+v", rec)
	}
	rep, err := rec.Decode()
	if err != nil || rep.Charts["timeline"] != "t.png" || rep.SessionID != "abc" {
		t.Fatalf("unexpected decoded report %+v %v", rep, err)
	}

	mock.ExpectQuery("FROM report_runs").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.GetBySession(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListDefaultsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("run-2", "b", nil, 0, []byte(`{}`), now).
			AddRow("run-1", "a", nil, 0, []byte(`{}`), now.Add(-time.Minute)))

	list, err := repo.List(context.Background(), 0, -1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "run-2" || list[1].GeneratedAt != "" {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

// payloadArg records the report bytes handed to the driver.
type payloadArg struct{ got *[]byte }

func (a payloadArg) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	if ok {
		*a.got = append([]byte(nil), b...)
	}
	return ok
}

func TestPGRepoKeepsCategoryOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	rep, err := report.Decode([]byte(`{
		"session_id": "s1",
		"comment_analysis": {"categories": {"質問": 1, "驚き": 2, "ワクワク・期待": 3, "挨拶": 4, "購入意志": 5, "その他": 6}},
		"peak_analysis": {"viewers": [], "shares": [], "clicks": []}
	}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rec, err := NewRecord(rep, time.Date(2024, 5, 1, 20, 16, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}

	var stored []byte
	mock.ExpectExec("INSERT INTO report_runs").
		WithArgs(rec.ID, rec.SessionID, nil, 0, payloadArg{got: &stored}, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mock.ExpectQuery("FROM report_runs").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(rec.ID, "s1", nil, 0, stored, rec.CreatedAt))

	got, err := repo.GetBySession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetBySession: %v", err)
	}
	back, err := got.Decode()
	if err != nil {
		t.Fatalf("Decode stored: %v", err)
	}

	var categories []string
	for pair := back.CommentAnalysis.Categories.Oldest(); pair != nil; pair = pair.Next() {
		categories = append(categories, pair.Key)
	}
	wantCategories := []string{"質問", "驚き", "ワクワク・期待", "挨拶", "購入意志", "その他"}
	if diff := cmp.Diff(wantCategories, categories); diff != "" {
		t.Fatalf("category order changed (-want +got):\n%s", diff)
	}

	var metrics []string
	for pair := back.PeakAnalysis.Oldest(); pair != nil; pair = pair.Next() {
		metrics = append(metrics, pair.Key)
	}
	if diff := cmp.Diff([]string{"viewers", "shares", "clicks"}, metrics); diff != "" {
		t.Fatalf("peak metric order changed (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
