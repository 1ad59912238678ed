package domain

import "strings"

// Style is the requested output register. The set is open: values outside the
// known constants are passed verbatim to the editor collaborator.
type Style string

const (
	StyleAcademic     Style = "academic"
	StyleJournalistic Style = "journalistic"
	StyleTechnical    Style = "technical"
	StylePopularized  Style = "popularized"

	DefaultStyle = StyleAcademic
)

// KnownStyles lists the styles the editors ship guidance for.
var KnownStyles = []Style{StyleAcademic, StyleJournalistic, StyleTechnical, StylePopularized}

// ParseStyle normalizes user input. Empty input yields DefaultStyle.
func ParseStyle(s string) Style {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return DefaultStyle
	}
	for _, known := range KnownStyles {
		if strings.EqualFold(clean, string(known)) {
			return known
		}
	}
	return Style(clean)
}

// Known reports whether s is one of KnownStyles.
func (s Style) Known() bool {
	for _, known := range KnownStyles {
		if s == known {
			return true
		}
	}
	return false
}
