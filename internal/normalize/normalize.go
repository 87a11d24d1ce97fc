// Package normalize holds the string folding rules shared by the keyword
// cache, the crawler and the command queue.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// illegalNameChars are stripped from user input before it is used as a
// search term; none of them can appear in a file name on Windows.
const illegalNameChars = `<>:"/\|?*`

// Fold returns the case-folded form of s.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Alias trims and case-folds a keyword alias.
func Alias(s string) string {
	return Fold(strings.TrimSpace(s))
}

// StripIllegal removes characters that cannot occur in file names.
func StripIllegal(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalNameChars, r) {
			return -1
		}
		return r
	}, s)
}

// StripSpace removes every whitespace rune from s.
func StripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// SearchTerms derives the two match terms used for one search:
// original keeps inner whitespace, normalized has none. Both are
// folded and stripped of illegal file-name characters.
func SearchTerms(input string) (original, normalized string) {
	original = Fold(strings.TrimSpace(StripIllegal(input)))
	normalized = StripSpace(original)
	return original, normalized
}

// ContainsAny reports whether s contains any of the non-empty terms.
func ContainsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}
