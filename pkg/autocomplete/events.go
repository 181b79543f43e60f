package autocomplete

import "sync"

// Event is anything an Engine publishes to its host.
type Event interface {
	ComponentID() string
}

type component string

func (c component) ComponentID() string { return string(c) }

// SearchParamsSet asks the host side to fetch candidates for Params.
type SearchParamsSet struct {
	component
	Params SearchParams
}

// PanelShown is published when the result panel becomes visible.
type PanelShown struct {
	component
}

// PanelClosed is published when the result panel is hidden.
type PanelClosed struct {
	component
}

// ResultsUpdated carries the results of the current search.
type ResultsUpdated struct {
	component
	Generation uint64
	Results    []Result
	Status     Status
}

// SearchFailed is published when the current search returned an error.
// It is distinct from an empty result list and from no type matching.
type SearchFailed struct {
	component
	Generation uint64
	Err        error
}

// SelectionChanged is published after navigation. The host should scroll
// the result at Index into view without moving surrounding content.
type SelectionChanged struct {
	component
	Index int
}

// Selected carries the full field value after a replacement.
type Selected struct {
	component
	NewValue string
}

type listener struct {
	id int
	fn func(Event)
}

// Emitter delivers events of one engine to its subscribers, in subscription order.
type Emitter struct {
	mu        sync.Mutex
	nextID    int
	listeners []listener
}

// Subscribe registers fn and returns a func that removes it again.
func (e *Emitter) Subscribe(fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

func (e *Emitter) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	e.mu.Lock()
	snapshot := make([]listener, len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.Unlock()

	for _, ev := range events {
		for _, l := range snapshot {
			l.fn(ev)
		}
	}
}
