package suggest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, opts Options) *Index {
	t.Helper()
	idx := NewIndex([]TypeSpec{
		{Name: "user", Trigger: "@"},
		{Name: "team", Trigger: "@"},
		{Name: "hashtag", Trigger: "#"},
	}, opts)

	for word, score := range map[string]int{"ali": 5, "alice": 120, "Alina": 80, "bob": 1} {
		require.NoError(t, idx.AddWord("user", word, score))
	}
	require.NoError(t, idx.AddWord("team", "alpha", 100))
	require.NoError(t, idx.AddWord("team", "@alice", 90))
	require.NoError(t, idx.AddWord("hashtag", "#golang", 50))
	return idx
}

func words(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Word
	}
	return out
}

func TestCompleteRanking(t *testing.T) {
	idx := newTestIndex(t, Options{})

	got, err := idx.Complete("user", "@ALI", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"ali", "alice", "Alina"}, words(got))
	require.True(t, got[0].Exact)
	require.False(t, got[1].Exact)

	got, err = idx.Complete("user", "@ali", 2)
	require.NoError(t, err)
	require.Equal(t, []string{"ali", "alice"}, words(got))
}

func TestCompleteMinScore(t *testing.T) {
	idx := newTestIndex(t, Options{MinScore: 2})

	got, err := idx.Complete("user", "@b", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCompleteUnknownType(t *testing.T) {
	idx := newTestIndex(t, Options{})

	_, err := idx.Complete("channel", "#x", 10)
	require.ErrorIs(t, err, ErrUnknownType)
	require.ErrorIs(t, idx.AddWord("channel", "x", 1), ErrUnknownType)
	require.Error(t, idx.AddWord("user", "two words", 1))
}

func TestCompleteFuzzyFallback(t *testing.T) {
	idx := newTestIndex(t, Options{Fuzzy: true})

	got, err := idx.Complete("user", "@aice", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Equal(t, "alice", got[0].Word)
	require.True(t, got[0].Fuzzy)

	strict := newTestIndex(t, Options{})
	got, err = strict.Complete("user", "@aice", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCompleteUsesHotCache(t *testing.T) {
	idx := newTestIndex(t, Options{HotCacheSize: 16})

	_, err := idx.Complete("user", "@al", 10)
	require.NoError(t, err)
	_, err = idx.Complete("user", "@al", 5)
	require.NoError(t, err)
	require.Equal(t, 1, idx.Stats()["hotCacheHits"])

	// new words must show up even though the prefix was cached
	require.NoError(t, idx.AddWord("user", "alison", 500))
	got, err := idx.Complete("user", "@al", 10)
	require.NoError(t, err)
	require.Equal(t, "alison", got[0].Word)
}

func TestSearchMergesTypes(t *testing.T) {
	idx := newTestIndex(t, Options{})

	results, err := idx.Search(context.Background(), autocomplete.SearchParams{
		Types: []string{"user", "team"},
		Word:  "@al",
	})
	require.NoError(t, err)

	require.Equal(t, []autocomplete.Result{
		{Type: "user", Label: "alice", Replacement: "@alice", Score: 120},
		{Type: "team", Label: "alpha", Replacement: "@alpha", Score: 100},
		{Type: "user", Label: "Alina", Replacement: "@Alina", Score: 80},
		{Type: "user", Label: "ali", Replacement: "@ali", Score: 5},
	}, results)
}

func TestSearchNLimit(t *testing.T) {
	idx := newTestIndex(t, Options{})

	results, err := idx.SearchN(context.Background(), autocomplete.SearchParams{
		Types: []string{"user", "team"},
		Word:  "@al",
	}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "@alice", results[0].Replacement)
}

func TestSearchErrors(t *testing.T) {
	idx := newTestIndex(t, Options{})

	_, err := idx.Search(context.Background(), autocomplete.SearchParams{Types: []string{"channel"}, Word: "#x"})
	require.ErrorIs(t, err, ErrUnknownType)

	// a known type alongside an unknown one still answers
	results, err := idx.Search(context.Background(), autocomplete.SearchParams{Types: []string{"channel", "hashtag"}, Word: "#go"})
	require.NoError(t, err)
	require.Equal(t, "#golang", results[0].Replacement)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.Search(ctx, autocomplete.SearchParams{Types: []string{"user"}, Word: "@al"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.txt"), []byte("carol 40\n@carla 30\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "planet.txt"), []byte("mars 1\n"), 0644))

	idx := NewIndex([]TypeSpec{{Name: "user", Trigger: "@"}}, Options{})
	stats, err := idx.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Files)

	got, err := idx.Complete("user", "@car", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"carol", "carla"}, words(got))
	require.Equal(t, 2, idx.Stats()["totalWords"])
}

func TestStats(t *testing.T) {
	idx := newTestIndex(t, Options{})
	stats := idx.Stats()

	require.Equal(t, 3, stats["types"])
	require.Equal(t, 4, stats["words.user"])
	require.Equal(t, 120, stats["maxScore.user"])
	require.Equal(t, 7, stats["totalWords"])
	require.Equal(t, []string{"user", "team", "hashtag"}, idx.Types())
}
