package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySessionID is returned when a successful upload response carries no session id.
	ErrEmptySessionID = errors.New("backend returned an empty session id")
	// ErrMissingReport is returned when a successful analyze response carries no report_data.
	ErrMissingReport = errors.New("backend returned no report data")
)

// TransportError means no response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response. Message is the body's error field, if any.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Code)
}

// RejectedError is a 2xx response whose body reports success=false.
type RejectedError struct {
	Op      string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s rejected: %s", e.Op, e.Message)
	}
	return e.Op + " rejected"
}

// Message picks the user-facing text for err: the server's error field when present,
// the transport's own description when nothing was received, fallback otherwise.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return transport.Error()
	}
	var status *StatusError
	if errors.As(err, &status) && status.Message != "" {
		return status.Message
	}
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return fallback
}
