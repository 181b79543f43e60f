package autocomplete

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplaceAt(t *testing.T) {
	testCases := []struct {
		name        string
		text        string
		replacement string
		index       int
		length      int
		expected    string
	}{
		{"KeepsSingleSpace", "foo bar", "baz", 0, 3, "baz bar"},
		{"AppendsSpaceAtEnd", "hello wor", "world", 6, 3, "hello world "},
		{"Mention", "@ali", "@alice", 0, 4, "@alice "},
		{"MiddleOfText", "hi @al there", "@alice", 3, 3, "hi @alice there"},
		{"NewlineSuffixGetsSpace", "@al\nnext", "@alice", 0, 3, "@alice \nnext"},
		{"Multibyte", "héllo @zo", "@zoë", 6, 3, "héllo @zoë "},
		{"IndexPastEnd", "abc", "x", 10, 2, "abcx "},
		{"NegativeIndex", "abc", "x", -2, 1, "x abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ReplaceAt(tc.text, tc.replacement, tc.index, tc.length))
		})
	}
}
