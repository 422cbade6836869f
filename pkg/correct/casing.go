package correct

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// matchCase gives word the capitalization pattern of original: all upper,
// title case, or whatever the dictionary produced.
func matchCase(original, word string) string {
	switch {
	case isUpper(original):
		return cases.Upper(language.Und).String(word)
	case isTitle(original):
		return cases.Title(language.Und).String(word)
	default:
		return word
	}
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// isUpper reports whether s has at least one cased rune and no lowercase ones
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r) || unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}

// isTitle reports whether every cased run in s starts with an upper or
// title case rune followed only by lowercase runes.
func isTitle(s string) bool {
	cased, prevCased := false, false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}
