package suggest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuzzyScore(t *testing.T) {
	_, ok := fuzzyScore([]rune("aice"), "alice")
	require.True(t, ok)

	_, ok = fuzzyScore([]rune("xyz"), "alice")
	require.False(t, ok)

	// contiguous runs beat scattered matches
	tight, ok := fuzzyScore([]rune("ali"), "alison")
	require.True(t, ok)
	loose, ok := fuzzyScore([]rune("ali"), "arcadia_lin")
	require.True(t, ok)
	require.Greater(t, tight, loose)
}

func TestFuzzyCandidates(t *testing.T) {
	entries := map[string]entry{
		"alice":    {word: "alice", score: 120},
		"alicia":   {word: "Alicia", score: 10},
		"bob":      {word: "bob", score: 90},
		"malice":   {word: "malice", score: 500},
		"lowscore": {word: "lowscore", score: 1},
	}

	got := fuzzyCandidates("alc", entries, 5)
	require.Equal(t, []string{"alice", "Alicia"}, words(got))
	for _, s := range got {
		require.True(t, s.Fuzzy)
	}

	require.Nil(t, fuzzyCandidates("a", entries, 0))
	require.Nil(t, fuzzyCandidates("aaa", entries, 0))
	require.Nil(t, fuzzyCandidates("2024", map[string]entry{"2024x": {word: "2024x", score: 9}}, 0))
	require.Empty(t, fuzzyCandidates("lwsc", entries, 5))
}
