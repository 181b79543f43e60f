package autocomplete

import "strings"

// ReplaceAt substitutes replacement for length runes of text starting at index.
// A single space is appended to the replacement unless the remaining text
// already starts with one, so the cursor always lands after a separator.
func ReplaceAt(text, replacement string, index, length int) string {
	runes := []rune(text)
	index = clamp(index, 0, len(runes))
	end := clamp(index+length, index, len(runes))

	prefix := string(runes[:index])
	suffix := string(runes[end:])

	if !strings.HasPrefix(suffix, " ") {
		replacement += " "
	}
	return prefix + replacement + suffix
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
