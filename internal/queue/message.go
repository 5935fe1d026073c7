package queue

import (
	"encoding/json"
	"time"

	"streamreport/internal/report"
)

// MessageVersion is bumped whenever Message changes shape.
const MessageVersion = 1

// Message announces a finished report.
type Message struct {
	SessionID     string `json:"sessionId"`
	GeneratedAt   string `json:"generatedAt,omitempty"`
	VideoDuration int    `json:"videoDuration,omitempty"`
	RequestID     string `json:"requestId"`
	PublishedAt   string `json:"publishedAt"`
	Version       int    `json:"version"`
}

// NewReportReady builds the notification for rep.
func NewReportReady(rep report.Report, requestID string, now time.Time) Message {
	return Message{
		SessionID:     rep.SessionID,
		GeneratedAt:   rep.GeneratedAt,
		VideoDuration: rep.VideoDuration,
		RequestID:     requestID,
		PublishedAt:   now.UTC().Format(time.RFC3339),
		Version:       MessageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
