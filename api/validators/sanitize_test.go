package validators

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeStringTrimsAndCaps(t *testing.T) {
	if got := SanitizeString("  hello  ", 0); got != "hello" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := SanitizeString("abcdef", 4); got != "abcd" {
		t.Fatalf("expected 4-rune cap, got %q", got)
	}
	if got := SanitizeString("abc", 4); got != "abc" {
		t.Fatalf("short values pass through, got %q", got)
	}
}

func TestSanitizeStringKeepsAccentedTextValid(t *testing.T) {
	note := strings.Repeat("livré ", 100)

	for maxLen := 1; maxLen <= 12; maxLen++ {
		got := SanitizeString(note, maxLen)
		if !utf8.ValidString(got) {
			t.Fatalf("truncation at %d produced invalid UTF-8: %q", maxLen, got)
		}
		if utf8.RuneCountInString(got) > maxLen {
			t.Fatalf("expected at most %d runes, got %q", maxLen, got)
		}
	}

	// A cut landing inside "é" must keep the whole rune out, not half of it.
	if got := SanitizeString("livré", 5); got != "livré" {
		t.Fatalf("expected the full word at 5 runes, got %q", got)
	}
	if got := SanitizeString("livré", 4); got != "livr" {
		t.Fatalf("expected %q, got %q", "livr", got)
	}
}
