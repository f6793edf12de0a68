package analysis

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// isSpace reports whether r is trimmed by the text helpers below: Unicode
// white space plus the byte order mark, minus NEL (U+0085).
func isSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func fields(s string) []string {
	return strings.FieldsFunc(s, isSpace)
}

// textLen measures s in UTF-16 code units, so characters outside the
// Basic Multilingual Plane count twice.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// truncateText keeps at most n UTF-16 code units of s. A surrogate pair
// that would be split at the boundary is dropped whole.
func truncateText(s string, n int) string {
	units := 0
	for i, r := range s {
		units += utf16.RuneLen(r)
		if units > n {
			return s[:i]
		}
	}
	return s
}

// asciiLower lower-cases A-Z only. Case-insensitive matching in the parser
// goes through it so that characters such as the long s (U+017F) or the
// Kelvin sign do not fold onto ASCII letters.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
