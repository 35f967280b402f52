package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world this is a long string", 15, "hello world ..."},
		{"newlines kept", "a\nb", 10, "a\nb"},
		{"unicode not split", "héllo wörld", 8, "héllo..."},
		{"tiny max clamped", "abcdef", 1, "a..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.maxLen))
		})
	}
}

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "exit code 1, expected 0 more", SingleLine("exit code 1,\texpected 0\n\nmore  "))
	assert.Equal(t, "", SingleLine(" \n "))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "> a\n> b", Indent("a\nb", "> "))
	assert.Equal(t, "  x", Indent("x", "  "))
}
