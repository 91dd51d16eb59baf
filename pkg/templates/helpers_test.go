package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{name: "shorter than limit", input: "BUY", n: 10, expected: "BUY"},
		{name: "cut at limit", input: "abcdef", n: 3, expected: "abc"},
		{name: "counts runes not bytes", input: "你好世界", n: 2, expected: "你好"},
		{name: "invalid utf8 dropped", input: "ab\xffcd", n: 3, expected: "abc"},
		{name: "zero limit", input: "abc", n: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.n))
		})
	}
}
