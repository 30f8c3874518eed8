package domain

import "time"

// Outcome classifies a finished generation attempt in the request log.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// LogEntry is one append-only record of a terminated job. Entries are never
// edited or removed once recorded.
type LogEntry struct {
	Time     time.Time `json:"time"`
	ClientID string    `json:"client_id"`
	Country  string    `json:"country,omitempty"`
	Topic    string    `json:"topic"`
	Outcome  Outcome   `json:"outcome"`
	Detail   string    `json:"detail,omitempty"`
}
