// Package strings holds small text helpers shared by the console outputs.
package strings

import (
	"strings"
)

// DefaultMessageMaxLen is the default width of failure messages in tables.
const DefaultMessageMaxLen = 60

// MinTruncateLen is the smallest maxLen Truncate accepts; smaller values are
// clamped so that one character plus "..." fits.
const MinTruncateLen = 4

// SingleLine collapses every whitespace run, newlines included, into one space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most maxLen runes, ending in "..." when it cuts.
// It operates on runes so multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// Indent prefixes every line of s with prefix.
func Indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
