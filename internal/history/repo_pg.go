package history

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO report_runs (
    id,
    session_id,
    generated_at,
    video_duration,
    report,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	var generatedAt sql.NullString
	if rec.GeneratedAt != "" {
		generatedAt = sql.NullString{String: rec.GeneratedAt, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.SessionID,
		generatedAt,
		rec.VideoDuration,
		[]byte(rec.Report),
		rec.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetBySession(ctx context.Context, sessionID string) (Record, error) {
	const query = `
SELECT id, session_id, generated_at, video_duration, report, created_at
FROM report_runs
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT 1`

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Record, error) {
	const query = `
SELECT id, session_id, generated_at, video_duration, report, created_at
FROM report_runs
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var generatedAt sql.NullString
	var payload []byte
	if err := row.Scan(
		&rec.ID,
		&rec.SessionID,
		&generatedAt,
		&rec.VideoDuration,
		&payload,
		&rec.CreatedAt,
	); err != nil {
		return Record{}, err
	}
	rec.GeneratedAt = generatedAt.String
	rec.Report = payload
	return rec, nil
}
