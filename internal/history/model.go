// Package history archives completed report runs.
package history

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"streamreport/internal/report"
)

// ErrNotFound is returned when no run exists for a session.
var ErrNotFound = errors.New("not found")

// Record is one archived report run.
type Record struct {
	ID            string
	SessionID     string
	GeneratedAt   string
	VideoDuration int
	Report        json.RawMessage
	CreatedAt     time.Time
}

// NewRecord snapshots rep for archiving.
func NewRecord(rep report.Report, createdAt time.Time) (Record, error) {
	if rep.SessionID == "" {
		return Record{}, errors.New("report has no session id")
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:            uuid.NewString(),
		SessionID:     rep.SessionID,
		GeneratedAt:   rep.GeneratedAt,
		VideoDuration: rep.VideoDuration,
		Report:        payload,
		CreatedAt:     createdAt.UTC(),
	}, nil
}

// Decode returns the archived report.
func (r Record) Decode() (report.Report, error) {
	rep, err := report.Decode(r.Report)
	if err != nil {
		return report.Report{}, err
	}
	if rep.SessionID == "" {
		rep.SessionID = r.SessionID
	}
	return rep, nil
}
