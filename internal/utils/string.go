package utils

import (
	"strconv"
	"strings"
)

// FormatWithCommas renders n with thousands separators, e.g. 12345 -> "12,345".
func FormatWithCommas(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// StripTrigger removes a leading trigger from word.
// The word is returned unchanged when it does not start with the trigger.
func StripTrigger(word, trigger string) string {
	if trigger == "" {
		return word
	}
	return strings.TrimPrefix(word, trigger)
}

// Truncate shortens s to at most n runes, adding an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
