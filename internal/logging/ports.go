// Package logging writes the durable activity and error logs and mirrors
// them to the console. Appends are best-effort: a failed write must never
// take down message delivery.
package logging

import (
	"context"
	"time"
)

// ErrorType classifies an error log entry.
type ErrorType string

const (
	ValidationError ErrorType = "VALIDATION_ERROR"
	APIError        ErrorType = "API_ERROR"
	ProcessingError ErrorType = "PROCESSING_ERROR"
	UnknownError    ErrorType = "UNKNOWN_ERROR"
)

// ActivityEntry is one row of the activity log.
type ActivityEntry struct {
	Timestamp      time.Time
	GroupID        string
	UserID         string
	Message        string
	Response       string
	Status         string
	ProcessingTime int64 // milliseconds
}

// ErrorEntry is one row of the error log. Context holds serialized
// context data as JSON.
type ErrorEntry struct {
	Timestamp  time.Time
	Type       ErrorType
	Message    string
	Context    string
	StackTrace string
}

// Repo persists both logs.
type Repo interface {
	AppendActivity(ctx context.Context, e ActivityEntry) error
	AppendError(ctx context.Context, e ErrorEntry) error
}
