package autocomplete

import (
	"unicode"
	"unicode/utf8"
)

// Token is a whitespace delimited word of the field content.
// Start and End are rune offsets, End is exclusive.
type Token struct {
	Word  string
	Start int
	End   int
}

// Len returns the token length in runes.
func (t Token) Len() int {
	return t.End - t.Start
}

// Contains reports whether the cursor touches the token.
// The cursor right before the first rune does not count, the one right after the last rune does.
func (t Token) Contains(cursor int) bool {
	return t.Start < cursor && t.End >= cursor
}

// Tokenize splits text on every single whitespace rune.
// Consecutive delimiters produce empty tokens, so ranges stay contiguous:
// each token starts one rune after the end of the previous one.
func Tokenize(text string) []Token {
	tokens := make([]Token, 0, 8)
	wordStart := 0
	start := 0
	pos := 0

	for i, r := range text {
		if unicode.IsSpace(r) {
			tokens = append(tokens, Token{Word: text[wordStart:i], Start: start, End: pos})
			wordStart = i + utf8.RuneLen(r)
			start = pos + 1
		}
		pos++
	}
	return append(tokens, Token{Word: text[wordStart:], Start: start, End: pos})
}

// ActiveToken returns the first token under the cursor.
// A negative cursor means the selection end is unknown and never matches.
func ActiveToken(text string, cursor int) (Token, bool) {
	if cursor < 0 {
		return Token{}, false
	}
	for _, tok := range Tokenize(text) {
		if tok.Contains(cursor) {
			return tok, true
		}
	}
	return Token{}, false
}
