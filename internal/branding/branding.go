// Package branding applies the one deliberate mutation of backend content:
// an attribution suffix on every scene's narration before the script is
// saved back.
package branding

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"snapstudy/internal/domain"
)

// DefaultSuffix is appended to scene narration unless overridden by config.
const DefaultSuffix = " | Generated with SnapStudy"

// Apply appends suffix to each scene's narration text exactly once. Scenes
// already carrying the suffix are left alone, so reapplying is a no-op.
// Titles, image references and non-text fields are never touched.
func Apply(script *domain.Script, suffix string) {
	if script == nil || suffix == "" {
		return
	}
	for i := range script.Scenes {
		if strings.Contains(script.Scenes[i].Text, suffix) {
			continue
		}
		script.Scenes[i].Text += suffix
	}
}

var titleCaser = cases.Title(language.Und)

// DisplayTitle normalizes a scene title for presentation. Titles that
// arrive entirely lower- or upper-cased are title-cased; mixed-case titles
// are presumed intentional and returned as-is. Display only; the saved
// script keeps the backend's original titles.
func DisplayTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "Lesson Scene"
	}
	if trimmed == strings.ToLower(trimmed) || trimmed == strings.ToUpper(trimmed) {
		return titleCaser.String(strings.ToLower(trimmed))
	}
	return trimmed
}
