package domain

import "testing"

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from JobState
		to   JobState
		want bool
	}{
		{"queued to initiating", JobStateQueued, JobStateInitiating, true},
		{"initiating to awaiting script", JobStateInitiating, JobStateAwaitingScript, true},
		{"awaiting script to editing", JobStateAwaitingScript, JobStateEditing, true},
		{"editing to rendering", JobStateEditing, JobStateRendering, true},
		{"rendering to succeeded", JobStateRendering, JobStateSucceeded, true},
		{"rendering to timed out", JobStateRendering, JobStateTimedOut, true},
		{"any active state may fail", JobStateEditing, JobStateFailed, true},
		{"any active state may cancel", JobStateQueued, JobStateCancelled, true},
		{"no skipping ahead", JobStateQueued, JobStateRendering, false},
		{"no moving backwards", JobStateRendering, JobStateEditing, false},
		{"succeeded is sticky", JobStateSucceeded, JobStateFailed, false},
		{"failed is sticky", JobStateFailed, JobStateSucceeded, false},
		{"cancelled is sticky", JobStateCancelled, JobStateRendering, false},
		{"timeout only from rendering", JobStateEditing, JobStateTimedOut, false},
		{"unknown state has no transitions", JobState("bogus"), JobStateFailed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTransition(tt.from, tt.to); got != tt.want {
				t.Fatalf("ValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	terminal := []JobState{JobStateSucceeded, JobStateFailed, JobStateTimedOut, JobStateCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
	active := []JobState{JobStateQueued, JobStateInitiating, JobStateAwaitingScript, JobStateEditing, JobStateRendering}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}
