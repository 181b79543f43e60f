package autocomplete

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/mentionserve/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Engine holds the autocomplete state of one bound text input.
// All methods are safe for concurrent use; events are published after the
// internal lock is released.
type Engine struct {
	id       string
	matcher  *Matcher
	searcher Searcher
	emitter  Emitter
	log      *log.Logger
	timeout  time.Duration

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu          sync.Mutex
	active      Token
	hasActive   bool
	matched     []string
	workingText string
	sel         selection
	generation  uint64
	cancel      context.CancelFunc
	results     []Result
	status      Status
}

// New creates an engine for the component id. An empty id gets a random one.
// searcher may be nil when the host pushes results through SetResults.
func New(id string, matcher *Matcher, searcher Searcher) *Engine {
	if id == "" {
		id = uuid.NewString()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Engine{
		id:       id,
		matcher:  matcher,
		searcher: searcher,
		log:      logger.New("autocomplete:" + id),
		ctx:      ctx,
		stop:     stop,
	}
}

// SetSearchTimeout bounds every search request. Zero disables the bound.
func (e *Engine) SetSearchTimeout(d time.Duration) {
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

// ID returns the component id the engine publishes under.
func (e *Engine) ID() string {
	return e.id
}

// Subscribe registers fn for every event of this engine.
func (e *Engine) Subscribe(fn func(Event)) func() {
	return e.emitter.Subscribe(fn)
}

// HandleInput processes the field content after a keyup.
func (e *Engine) HandleInput(content string, cursor int) {
	e.mu.Lock()
	var events []Event

	tok, ok := ActiveToken(content, cursor)
	if !ok {
		e.hasActive = false
		events = e.closeLocked(events)
		e.mu.Unlock()
		e.emitter.emit(events...)
		return
	}

	// Keys that do not alter the word, like a modifier release, issue nothing.
	// Offsets and text still follow the field so a later Select splices the
	// current content.
	if e.hasActive && tok.Word == e.active.Word {
		e.active = tok
		e.workingText = content
		e.mu.Unlock()
		return
	}

	e.active = tok
	e.hasActive = true
	e.workingText = content
	e.matched = e.matcher.Match(tok.Word)

	if len(e.matched) == 0 {
		events = e.closeLocked(events)
		e.mu.Unlock()
		e.emitter.emit(events...)
		return
	}

	e.cancelLocked()
	e.generation++
	params := SearchParams{
		Generation: e.generation,
		Types:      append([]string(nil), e.matched...),
		Word:       tok.Word,
	}
	e.results = nil
	e.status = StatusPending

	events = append(events, SearchParamsSet{component(e.id), params})
	if e.sel.show() {
		events = append(events, PanelShown{component(e.id)})
	}

	var ctx context.Context
	if e.searcher != nil {
		ctx = e.requestContextLocked()
		e.wg.Add(1)
	}
	e.mu.Unlock()

	e.log.Debug("search issued", "generation", params.Generation, "types", params.Types, "word", params.Word)
	e.emitter.emit(events...)

	if ctx != nil {
		go e.runSearch(ctx, params)
	}
}

func (e *Engine) requestContextLocked() context.Context {
	var ctx context.Context
	var cancel context.CancelFunc
	if e.timeout > 0 {
		ctx, cancel = context.WithTimeout(e.ctx, e.timeout)
	} else {
		ctx, cancel = context.WithCancel(e.ctx)
	}
	e.cancel = cancel
	return ctx
}

func (e *Engine) runSearch(ctx context.Context, params SearchParams) {
	defer e.wg.Done()
	results, err := e.searcher.Search(ctx, params)
	e.deliver(params.Generation, results, err)
}

// SetResults hands in results fetched by the host for the given generation.
// Results for a stale generation or a closed panel are dropped.
func (e *Engine) SetResults(generation uint64, results []Result) {
	e.deliver(generation, results, nil)
}

// Fail marks the search of the given generation as failed.
func (e *Engine) Fail(generation uint64, err error) {
	if err == nil {
		err = errors.New("search failed")
	}
	e.deliver(generation, nil, err)
}

func (e *Engine) deliver(generation uint64, results []Result, err error) {
	e.mu.Lock()
	if generation != e.generation || !e.sel.open {
		e.mu.Unlock()
		e.log.Debug("dropping stale response", "generation", generation)
		return
	}

	var ev Event
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		e.mu.Unlock()
		return
	case err != nil:
		e.results = nil
		e.status = StatusFailed
		ev = SearchFailed{component(e.id), generation, err}
	default:
		e.results = append([]Result(nil), results...)
		e.status = StatusReady
		if len(e.results) == 0 {
			e.status = StatusEmpty
		}
		e.sel.fit(len(e.results))
		ev = ResultsUpdated{component(e.id), generation, append([]Result(nil), e.results...), e.status}
	}
	e.mu.Unlock()

	if err != nil {
		e.log.Warn("search failed", "generation", generation, "err", err)
	}
	e.emitter.emit(ev)
}

// ArrowUp moves the highlight up, wrapping around. No-op while closed or empty.
func (e *Engine) ArrowUp() {
	e.navigate((*selection).up)
}

// ArrowDown moves the highlight down, wrapping around. No-op while closed or empty.
func (e *Engine) ArrowDown() {
	e.navigate((*selection).down)
}

func (e *Engine) navigate(move func(*selection, int) bool) {
	e.mu.Lock()
	if !move(&e.sel, len(e.results)) {
		e.mu.Unlock()
		return
	}
	ev := SelectionChanged{component(e.id), e.sel.index}
	e.mu.Unlock()
	e.emitter.emit(ev)
}

// Select replaces the active token with the highlighted result,
// or with the token itself when there is nothing to pick.
func (e *Engine) Select() {
	e.selectReplacement(nil)
}

// SelectReplacement replaces the active token with an explicit value.
func (e *Engine) SelectReplacement(replacement string) {
	e.selectReplacement(&replacement)
}

func (e *Engine) selectReplacement(explicit *string) {
	e.mu.Lock()
	if !e.hasActive {
		e.mu.Unlock()
		return
	}

	replacement := e.active.Word
	switch {
	case explicit != nil:
		replacement = *explicit
	case e.sel.index < len(e.results) && e.results[e.sel.index].Replacement != "":
		replacement = e.results[e.sel.index].Replacement
	}

	newValue := ReplaceAt(e.workingText, replacement, e.active.Start, utf8.RuneCountInString(e.active.Word))
	events := []Event{Selected{component(e.id), newValue}}

	e.hasActive = false
	e.active = Token{}
	events = e.closeLocked(events)
	e.mu.Unlock()

	e.emitter.emit(events...)
}

// Close hides the panel and cancels the in-flight search.
func (e *Engine) Close() {
	e.mu.Lock()
	events := e.closeLocked(nil)
	e.mu.Unlock()
	e.emitter.emit(events...)
}

func (e *Engine) closeLocked(events []Event) []Event {
	e.cancelLocked()
	e.results = nil
	e.status = StatusIdle
	if e.sel.hide() {
		events = append(events, PanelClosed{component(e.id)})
	}
	return events
}

func (e *Engine) cancelLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Wait blocks until every issued search has returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Stop cancels all searches and waits for them.
func (e *Engine) Stop() {
	e.stop()
	e.wg.Wait()
}

// Visible reports whether the result panel is shown.
func (e *Engine) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.open
}

// SelectedIndex returns the highlighted result index.
func (e *Engine) SelectedIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.index
}

// Results returns a copy of the current result list.
func (e *Engine) Results() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Result(nil), e.results...)
}

// Status returns the state of the current result list.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// ActiveToken returns the token under the cursor at the last keyup.
func (e *Engine) ActiveToken() (Token, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active, e.hasActive
}

// WorkingText returns the field content seen when the active token last changed.
func (e *Engine) WorkingText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workingText
}

// MatchedTypes returns the types matched by the active token.
func (e *Engine) MatchedTypes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.matched...)
}

// Generation returns the generation of the latest search.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}
