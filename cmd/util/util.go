// Package util holds small helpers shared by the cmd/server and cmd/client
// binaries.
package util

import "strings"

// Wrap is the number of characters flag help text is wrapped at.
const Wrap int = 60

// WrapString wraps text at Wrap characters on word boundaries, for use in
// cobra flag usage strings.
func WrapString(text string) string {
	var lines []string
	var current strings.Builder
	width := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)
		if width > 0 && width+1+wordWidth > Wrap {
			lines = append(lines, current.String())
			current.Reset()
			width = 0
		}
		if width > 0 {
			current.WriteString(" ")
			width++
		}
		current.WriteString(word)
		width += wordWidth
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}
