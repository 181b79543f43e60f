package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/bastiangx/mentionserve/pkg/config"
	"github.com/bastiangx/mentionserve/pkg/suggest"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, limit int) (*InputHandler, *autocomplete.Engine, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	idx := suggest.NewIndex(cfg.TypeSpecs(), cfg.IndexOptions())
	require.NoError(t, idx.AddWord("mention", "alice", 120))
	require.NoError(t, idx.AddWord("mention", "alina", 80))
	require.NoError(t, idx.AddWord("mention", "alison", 20))

	m, err := cfg.Matcher()
	require.NoError(t, err)
	engine := autocomplete.New("cli-test", m, Searcher(idx, limit))
	t.Cleanup(engine.Stop)

	out := &bytes.Buffer{}
	return NewInputHandler(engine, out, false, 0), engine, out
}

func TestHandleLineShowsPanel(t *testing.T) {
	h, engine, out := newTestHandler(t, 0)

	h.HandleLine("hi @ali")
	require.True(t, engine.Visible())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], ">  1. @alice"))
	require.Contains(t, lines[1], "@alina")
	require.Contains(t, lines[0], "[mention 120]")
}

func TestHandleLineNavigationAndSelect(t *testing.T) {
	h, engine, out := newTestHandler(t, 0)

	h.HandleLine("hi @ali")
	out.Reset()
	h.HandleLine(":down")
	require.Equal(t, 1, engine.SelectedIndex())
	require.Contains(t, out.String(), ">  2. @alina")

	out.Reset()
	h.HandleLine(":select")
	require.Equal(t, "= hi @alina \n", out.String())
	require.Equal(t, "hi @alina ", h.Value())
	require.Equal(t, len([]rune("hi @alina ")), h.Cursor())
	require.False(t, engine.Visible())

	out.Reset()
	h.HandleLine(":up")
	require.Contains(t, out.String(), "panel is closed")
}

func TestHandleLineNoMatches(t *testing.T) {
	h, _, out := newTestHandler(t, 0)

	h.HandleLine("@zz")
	require.Contains(t, out.String(), "no matches")

	out.Reset()
	h.HandleLine("plain words")
	require.Empty(t, out.String())
}

func TestNavigationStaysWithinShownRows(t *testing.T) {
	h, engine, out := newTestHandler(t, 2)

	h.HandleLine("hi @al")
	require.Len(t, engine.Results(), 2)
	require.NotContains(t, out.String(), "@alison")

	out.Reset()
	h.HandleLine(":up")
	require.Equal(t, 1, engine.SelectedIndex())
	require.Contains(t, out.String(), ">  2. @alina")

	out.Reset()
	h.HandleLine(":select")
	require.Equal(t, "= hi @alina \n", out.String())
}

func TestStartReadsUntilQuit(t *testing.T) {
	h, _, out := newTestHandler(t, 0)

	err := h.Start(strings.NewReader("@ali\n:close\n:quit\n@never\n"))
	require.NoError(t, err)
	require.Contains(t, out.String(), "@alice")
	require.NotContains(t, out.String(), "@never")
}
