package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps the value at maxLen
// runes. Truncation never splits a multi-byte character, so accented input
// stays valid UTF-8.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return string(runes[:maxLen])
}
