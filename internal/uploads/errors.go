package uploads

import "errors"

// ErrIncompleteSelection is the cause of an upload attempted without all three inputs.
var ErrIncompleteSelection = errors.New("upload requires video, data and comments")

// UploadError is a failed upload attempt. Message is what the user sees.
type UploadError struct {
	Message string
	Cause   error
}

func (e *UploadError) Error() string {
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}
