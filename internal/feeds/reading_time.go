package feeds

import (
	"strings"
	"unicode"
)

// wordsPerMinute is the average adult reading speed for non-fiction prose.
const wordsPerMinute = 238

// CalculateReadingTime estimates reading time in whole minutes, rounding up.
// Non-empty text takes at least one minute; empty text takes zero.
func CalculateReadingTime(text string) int {
	words := countWords(text)
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// countWords counts words, treating whitespace and punctuation as separators.
func countWords(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(".,;:!?\"'()[]{}—–-", r)
	}))
}
