package branding

import (
	"testing"

	"snapstudy/internal/domain"
)

func TestApplyAppendsSuffixOnce(t *testing.T) {
	script := &domain.Script{Scenes: []domain.Scene{
		{Title: "Photosynthesis", Text: "Photosynthesis converts light to energy."},
		{Title: "Chlorophyll", Text: "Chlorophyll absorbs sunlight."},
	}}

	Apply(script, " | Generated")
	want := "Photosynthesis converts light to energy. | Generated"
	if script.Scenes[0].Text != want {
		t.Fatalf("text = %q, want %q", script.Scenes[0].Text, want)
	}

	// Idempotent: a second pass must not duplicate the suffix.
	Apply(script, " | Generated")
	if script.Scenes[0].Text != want {
		t.Fatalf("text after reapply = %q, want %q", script.Scenes[0].Text, want)
	}
	if script.Scenes[1].Text != "Chlorophyll absorbs sunlight. | Generated" {
		t.Fatalf("second scene = %q", script.Scenes[1].Text)
	}
}

func TestApplyLeavesTitlesAndImagesAlone(t *testing.T) {
	script := &domain.Script{Scenes: []domain.Scene{
		{Title: "the water cycle", Text: "Water evaporates.", Images: []string{"https://cdn.example.com/1.png"}},
	}}
	Apply(script, " | Generated")
	if script.Scenes[0].Title != "the water cycle" {
		t.Fatalf("title mutated: %q", script.Scenes[0].Title)
	}
	if len(script.Scenes[0].Images) != 1 || script.Scenes[0].Images[0] != "https://cdn.example.com/1.png" {
		t.Fatalf("images mutated: %v", script.Scenes[0].Images)
	}
}

func TestApplyEmptySuffixIsNoop(t *testing.T) {
	script := &domain.Script{Scenes: []domain.Scene{{Text: "Unchanged."}}}
	Apply(script, "")
	if script.Scenes[0].Text != "Unchanged." {
		t.Fatalf("text = %q", script.Scenes[0].Text)
	}
}

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the water cycle", "The Water Cycle"},
		{"QUANTUM ENTANGLEMENT", "Quantum Entanglement"},
		{"Newton's Laws of Motion", "Newton's Laws of Motion"},
		{"  ", "Lesson Scene"},
		{"", "Lesson Scene"},
	}
	for _, tc := range tests {
		if got := DisplayTitle(tc.in); got != tc.want {
			t.Fatalf("DisplayTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
