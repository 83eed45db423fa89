package widgets

import "strings"

// Rotator produces a marquee view of a text that is wider than its label.
// Each call to Rotate moves the text one rune to the left, wrapping around.
// It is not safe for concurrent use.
type Rotator struct {
	runes []rune
	width int
}

// NewRotator creates a rotator for text shown in a label width runes wide.
func NewRotator(text string, width int) *Rotator {
	return &Rotator{runes: []rune(strings.Repeat(" ", 4) + text), width: width}
}

// Rotate advances the marquee and returns the text to display.
// Text that fits in the label is returned unchanged.
func (r *Rotator) Rotate() string {
	if len(r.runes) <= r.width {
		return strings.TrimLeft(string(r.runes), " ")
	}
	r.runes = append(r.runes[1:], r.runes[0])
	return string(r.runes)
}
