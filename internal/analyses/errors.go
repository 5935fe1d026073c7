package analyses

import "errors"

// ErrNoSession is the cause of an analysis requested without a session id.
var ErrNoSession = errors.New("analysis requires a session")

// AnalysisError is a failed analysis attempt. Message is what the user sees.
type AnalysisError struct {
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}
