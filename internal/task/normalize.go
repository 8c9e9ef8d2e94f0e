package task

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize normalizes a string for matching:
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return s
}

// CountChars returns the character count as runes (not bytes).
// This correctly handles multi-byte UTF-8 characters.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// MatchesReference reports whether task content contains the given
// reference phrase, comparing both sides in normalized form so casing and
// irregular whitespace never break a match.
func MatchesReference(content, reference string) bool {
	ref := Normalize(reference)
	if ref == "" {
		return false
	}
	return strings.Contains(Normalize(content), ref)
}
