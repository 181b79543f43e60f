package dictionary

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadText(t *testing.T) {
	input := `# people
alice 120
alina 80
bob
broken line here
carol notanumber

dave 5
`
	entries, skipped, err := ReadText(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, skipped)
	require.Equal(t, []Entry{
		{Word: "alice", Score: 120},
		{Word: "alina", Score: 80},
		{Word: "bob", Score: DefaultScore},
		{Word: "dave", Score: 5},
	}, entries)
}

func TestTextAndBinaryAgree(t *testing.T) {
	entries := []Entry{{Word: "alice", Score: 120}, {Word: "bob", Score: 7}}

	var text bytes.Buffer
	require.NoError(t, WriteText(&text, entries))
	fromText, _, err := ReadText(&text)
	require.NoError(t, err)

	var bin bytes.Buffer
	require.NoError(t, WriteBinary(&bin, entries))
	fromBin, err := ReadBinary(&bin)
	require.NoError(t, err)

	require.Equal(t, fromText, fromBin)
}

func TestSaveBinaryAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "hashtag.bin")
	require.NoError(t, SaveBinary(path, []Entry{{Word: "golang", Score: 50}}))

	set, skipped, err := Load(path)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Equal(t, "hashtag", set.Type)
	require.Equal(t, FormatBinary, set.Format)
	require.Equal(t, []Entry{{Word: "golang", Score: 50}}, set.Entries)

	require.Error(t, SaveBinary(filepath.Join(dir, "hashtag.txt"), nil))
}

func TestLoadRejectsUnknownAndEmpty(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(md, []byte("x"), 0644))
	_, _, err := Load(md)
	require.Error(t, err)

	empty := filepath.Join(dir, "mention.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, _, err = Load(empty)
	require.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mention.txt"), []byte("alice 120\nalina 80\n"), 0644))
	require.NoError(t, SaveBinary(filepath.Join(dir, "mention.bin"), []Entry{{Word: "bob", Score: 3}}))
	require.NoError(t, SaveBinary(filepath.Join(dir, "hashtag.bin"), []Entry{{Word: "golang", Score: 50}}))

	sets, stats, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Files)
	require.Equal(t, 4, stats.Entries)
	require.Len(t, sets, 2)

	require.Equal(t, "hashtag", sets[0].Type)
	require.Equal(t, "mention", sets[1].Type)
	require.ElementsMatch(t, []Entry{
		{Word: "alice", Score: 120},
		{Word: "alina", Score: 80},
		{Word: "bob", Score: 3},
	}, sets[1].Entries)
}

func TestLoadDirErrors(t *testing.T) {
	_, _, err := LoadDir(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrNoDictionaries)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mention.bin"), []byte{0xc1}, 0644))
	_, _, err = LoadDir(context.Background(), dir)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mention.bin"), []byte{0x90}, 0644))
	_, _, err = LoadDir(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDetectFormat(t *testing.T) {
	require.Equal(t, FormatText, DetectFormat("a/mention.TXT"))
	require.Equal(t, FormatBinary, DetectFormat("hashtag.bin"))
	require.Equal(t, FormatUnknown, DetectFormat("README"))
	require.Equal(t, "mention", TypeName("/data/mention.txt"))
}
