package domain

import "time"

// JobState enumerates the lifecycle states of a generation job.
type JobState string

const (
	JobStateQueued         JobState = "queued"
	JobStateInitiating     JobState = "initiating"
	JobStateAwaitingScript JobState = "awaiting_script"
	JobStateEditing        JobState = "editing"
	JobStateRendering      JobState = "rendering"
	JobStateSucceeded      JobState = "succeeded"
	JobStateFailed         JobState = "failed"
	JobStateTimedOut       JobState = "timed_out"
	JobStateCancelled      JobState = "cancelled"
)

// validTransitions maps each state to the states it may move to. Transitions
// are forward-only; terminal states allow none.
var validTransitions = map[JobState]map[JobState]bool{
	JobStateQueued: {
		JobStateInitiating: true,
		JobStateFailed:     true,
		JobStateCancelled:  true,
	},
	JobStateInitiating: {
		JobStateAwaitingScript: true,
		JobStateFailed:         true,
		JobStateCancelled:      true,
	},
	JobStateAwaitingScript: {
		JobStateEditing:   true,
		JobStateFailed:    true,
		JobStateCancelled: true,
	},
	JobStateEditing: {
		JobStateRendering: true,
		JobStateFailed:    true,
		JobStateCancelled: true,
	},
	JobStateRendering: {
		JobStateSucceeded: true,
		JobStateFailed:    true,
		JobStateTimedOut:  true,
		JobStateCancelled: true,
	},
	JobStateSucceeded: {},
	JobStateFailed:    {},
	JobStateTimedOut:  {},
	JobStateCancelled: {},
}

// ValidTransition reports whether a job may move from one state to another.
func ValidTransition(from, to JobState) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobStateSucceeded || s == JobStateFailed || s == JobStateTimedOut || s == JobStateCancelled
}

// FailureCategory is the machine-usable classification of a terminal failure.
type FailureCategory string

const (
	FailureQuotaExceeded FailureCategory = "quota_exceeded"
	FailureInitiation    FailureCategory = "initiation_error"
	FailureEdit          FailureCategory = "edit_error"
	FailureRender        FailureCategory = "render_error"
	FailureTimeout       FailureCategory = "timed_out"
	FailureCancelled     FailureCategory = "cancelled"
)

// Failure carries the category plus the raw underlying message for diagnostics.
type Failure struct {
	Category FailureCategory `json:"category"`
	Detail   string          `json:"detail,omitempty"`
}

// Result holds the finished artifact of a succeeded job.
type Result struct {
	Scenes   []Scene `json:"scenes"`
	VideoURL string  `json:"video_url"`
}

// Job is one end-to-end attempt to turn a topic into a rendered lesson video.
// The orchestrator exclusively owns mutation; everything else reads snapshots.
type Job struct {
	ID           string
	Topic        string
	ClientID     string
	Locale       string
	State        JobState
	Progress     string
	Result       *Result
	Failure      *Failure
	CreatedAt    time.Time
	TerminatedAt *time.Time
}
