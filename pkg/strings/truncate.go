// Package strings holds text helpers shared by the terminal renderers.
package strings

import (
	"strings"
)

// DescriptionMaxLen is the width descriptions are cut to in tables and trees.
const DescriptionMaxLen = 60

// minTruncateLen leaves room for one rune plus the ellipsis.
const minTruncateLen = 4

// SingleLine collapses every run of whitespace, newlines included, into one space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns s on a single line, cut to maxLen runes with "..." when
// it is longer. maxLen below 4 is treated as 4.
func Truncate(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}
	s = SingleLine(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
