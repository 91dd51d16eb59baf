package templates

import (
	"strings"
	"text/template"
	"unicode/utf8"
)

// FuncMap lists the helpers available to every prompt template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"join":     strings.Join,
		"upper":    strings.ToUpper,
		"truncate": Truncate,
	}
}

// Truncate returns the first n runes of s. Invalid UTF-8 is dropped first.
func Truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
