package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "prod-org", 10, "prod-org"},
		{"exact", "prod-org", 8, "prod-org"},
		{"cut", "could not reach link.example.com", 15, "could not re..."},
		{"stderr lines joined", "Error: 401\n  token expired\n", 40, "Error: 401 token expired"},
		{"tabs collapsed", "a\t\tb", 10, "a b"},
		{"multibyte runes", "connexion échouée", 12, "connexion..."},
		{"clamped width", "abcdef", 1, "a..."},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.maxLen))
		})
	}
}

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "one two three", SingleLine("  one\ntwo\r\n three "))
}
