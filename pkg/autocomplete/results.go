package autocomplete

import "context"

// SearchParams describes one search request for the active token.
type SearchParams struct {
	Generation uint64
	Types      []string
	Word       string
}

// Result is one candidate replacement shown in the panel.
type Result struct {
	Type        string
	Label       string
	Replacement string
	Score       int
}

// Searcher fetches candidates for a token. Implementations must honor ctx
// cancellation; the engine cancels requests it no longer cares about.
type Searcher interface {
	Search(ctx context.Context, params SearchParams) ([]Result, error)
}

// SearcherFunc adapts a plain function to Searcher.
type SearcherFunc func(ctx context.Context, params SearchParams) ([]Result, error)

func (f SearcherFunc) Search(ctx context.Context, params SearchParams) ([]Result, error) {
	return f(ctx, params)
}

// Status of the result list for the current search.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusReady
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}
