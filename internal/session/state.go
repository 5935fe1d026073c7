// Package session holds the identity and result of the current workflow run.
package session

import (
	"sync"

	"streamreport/internal/report"
)

// Session identifies one upload/analysis run. It is never mutated after creation.
type Session struct {
	ID string `json:"id"`
}

// Stage is the position of the workflow.
type Stage int

const (
	StageIdle Stage = iota
	StageUploaded
	StageReported
)

func (s Stage) String() string {
	switch s {
	case StageUploaded:
		return "uploaded"
	case StageReported:
		return "reported"
	default:
		return "idle"
	}
}

// State owns the current session and its last report.
type State struct {
	mu      sync.RWMutex
	stage   Stage
	session Session
	report  report.Report
}

// Begin records a freshly uploaded session and drops any previous report.
func (s *State) Begin(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	s.report = report.Report{}
	s.stage = StageUploaded
}

// Complete stores the report of the current session. It returns false when no
// session has been uploaded.
func (s *State) Complete(r report.Report) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageIdle {
		return false
	}
	s.report = r
	s.stage = StageReported
	return true
}

// Session returns the current session; ok is false while idle.
func (s *State) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.stage != StageIdle
}

// Report returns the last report; ok is false until the session is reported.
func (s *State) Report() (report.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.stage == StageReported
}

func (s *State) Stage() Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

// Reset is the full restart: session and report are discarded.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = StageIdle
	s.session = Session{}
	s.report = report.Report{}
}
