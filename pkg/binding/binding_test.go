package binding

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/stretchr/testify/require"
)

type manualTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

type fakeInput struct {
	mu       sync.Mutex
	value    string
	cursor   int
	focused  int
	notified []string
}

func (f *fakeInput) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *fakeInput) Cursor() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

func (f *fakeInput) SetValue(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = value
	f.cursor = len([]rune(value))
}

func (f *fakeInput) Focus() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused++
}

func (f *fakeInput) NotifyInput(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, value)
}

func (f *fakeInput) typeText(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = value
	f.cursor = len([]rune(value))
}

type countingSearcher struct {
	mu    sync.Mutex
	words []string
}

func (s *countingSearcher) Search(ctx context.Context, params autocomplete.SearchParams) ([]autocomplete.Result, error) {
	s.mu.Lock()
	s.words = append(s.words, params.Word)
	s.mu.Unlock()
	return []autocomplete.Result{
		{Type: "mention", Label: "alice", Replacement: "@alice"},
		{Type: "mention", Label: "alina", Replacement: "@alina"},
	}, nil
}

func (s *countingSearcher) searched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.words...)
}

func newTestBinding(t *testing.T) (*Binding, *autocomplete.Engine, *fakeInput, *manualClock, *countingSearcher) {
	t.Helper()
	m, err := autocomplete.NewMatcher([]autocomplete.TypeConfig{{Name: "mention", Expression: `^@\w+`}})
	require.NoError(t, err)

	searcher := &countingSearcher{}
	engine := autocomplete.New("composer", m, searcher)
	input := &fakeInput{}
	clock := &manualClock{}
	b := NewWithClock(engine, input, DefaultDelay, clock)

	t.Cleanup(func() {
		b.Release()
		engine.Stop()
	})
	return b, engine, input, clock, searcher
}

func TestDebouncerRunsLastTrigger(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(250*time.Millisecond, clock)

	var ran []int
	d.Trigger(func() { ran = append(ran, 1) })
	clock.Advance(100 * time.Millisecond)
	d.Trigger(func() { ran = append(ran, 2) })
	clock.Advance(200 * time.Millisecond)
	require.Empty(t, ran)
	require.True(t, d.Pending())

	clock.Advance(50 * time.Millisecond)
	require.Equal(t, []int{2}, ran)
	require.False(t, d.Pending())
}

func TestDebouncerCancelAndFlush(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(250*time.Millisecond, clock)

	ran := 0
	d.Trigger(func() { ran++ })
	d.Cancel()
	clock.Advance(time.Second)
	require.Zero(t, ran)

	d.Trigger(func() { ran++ })
	d.Flush()
	require.Equal(t, 1, ran)
	clock.Advance(time.Second)
	require.Equal(t, 1, ran)

	d.Flush()
	require.Equal(t, 1, ran)
}

func TestDebouncerWallClock(t *testing.T) {
	d := NewDebouncer(5*time.Millisecond, nil)
	done := make(chan struct{})
	d.Trigger(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced callback never ran")
	}
}

func TestBindingKeyUpIsDebounced(t *testing.T) {
	b, engine, input, clock, searcher := newTestBinding(t)

	input.typeText("@a")
	b.KeyUp()
	input.typeText("@al")
	b.KeyUp()
	input.typeText("@ali")
	b.KeyUp()

	clock.Advance(249 * time.Millisecond)
	require.Empty(t, searcher.searched())

	clock.Advance(time.Millisecond)
	engine.Wait()
	require.Equal(t, []string{"@ali"}, searcher.searched())
	require.True(t, b.PanelShown())
}

func TestBindingKeysIgnoredWhilePanelClosed(t *testing.T) {
	b, engine, _, _, _ := newTestBinding(t)

	for _, k := range []Key{KeyArrowUp, KeyArrowDown, KeyEnter, KeyTab, KeyEscape} {
		require.False(t, b.KeyDown(k), k.String())
	}
	require.False(t, b.ClickAway())
	require.False(t, engine.Visible())
}

func TestBindingNavigationIsNotDebounced(t *testing.T) {
	b, engine, input, _, _ := newTestBinding(t)

	input.typeText("@ali")
	b.KeyUp()
	b.FlushKeyUp()
	engine.Wait()

	require.True(t, b.KeyDown(KeyArrowDown))
	require.Equal(t, 1, engine.SelectedIndex())
	require.True(t, b.KeyDown(KeyArrowDown))
	require.Equal(t, 0, engine.SelectedIndex())
	require.True(t, b.KeyDown(KeyArrowUp))
	require.Equal(t, 1, engine.SelectedIndex())
	require.False(t, b.KeyDown(KeyOther))
}

func TestBindingEnterSelects(t *testing.T) {
	b, engine, input, clock, searcher := newTestBinding(t)

	input.typeText("hi @ali")
	b.KeyUp()
	b.FlushKeyUp()
	engine.Wait()

	// a keyup still pending must not survive the selection
	b.KeyUp()
	require.True(t, b.KeyDown(KeyEnter))
	clock.Advance(time.Second)
	engine.Wait()

	require.Equal(t, "hi @alice ", input.Value())
	require.Equal(t, []string{"hi @alice "}, input.notified)
	require.Equal(t, 1, input.focused)
	require.False(t, b.PanelShown())
	require.Len(t, searcher.searched(), 1)
}

func TestBindingTabSelects(t *testing.T) {
	b, engine, input, _, _ := newTestBinding(t)

	input.typeText("@ali")
	b.KeyUp()
	b.FlushKeyUp()
	engine.Wait()

	require.True(t, b.KeyDown(KeyArrowUp))
	require.True(t, b.KeyDown(KeyTab))
	require.Equal(t, "@alina ", input.Value())
}

func TestBindingEscapeAndClickAway(t *testing.T) {
	b, engine, input, _, _ := newTestBinding(t)

	input.typeText("@ali")
	b.KeyUp()
	b.FlushKeyUp()
	engine.Wait()
	b.KeyDown(KeyArrowDown)

	require.True(t, b.KeyDown(KeyEscape))
	require.False(t, engine.Visible())
	require.Equal(t, 0, engine.SelectedIndex())
	require.False(t, b.PanelShown())
	require.Equal(t, "@ali", input.Value())

	input.typeText("@ali @bo")
	b.KeyUp()
	b.FlushKeyUp()
	engine.Wait()
	require.True(t, b.PanelShown())
	require.True(t, b.ClickAway())
	require.False(t, b.PanelShown())
}

func TestParseKey(t *testing.T) {
	require.Equal(t, KeyEnter, ParseKey("Enter"))
	require.Equal(t, KeyArrowUp, ParseKey("ArrowUp"))
	require.Equal(t, KeyOther, ParseKey("a"))
	require.Equal(t, "Escape", KeyEscape.String())
	require.Equal(t, "Other", KeyOther.String())
}
