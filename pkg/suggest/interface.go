// Package suggest is the candidate index behind autocomplete searches, providing per type trie traversals and retrievals for token prefixes.
package suggest

import (
	"context"

	"github.com/bastiangx/mentionserve/pkg/autocomplete"
)

// ICompleter defines the interface for candidate indexes served over the transports.
type ICompleter interface {
	autocomplete.Searcher

	// SearchN is Search with an explicit result limit.
	SearchN(ctx context.Context, params autocomplete.SearchParams, limit int) ([]autocomplete.Result, error)

	// Complete returns ranked suggestions of one type for a prefix.
	Complete(typ, prefix string, limit int) ([]Suggestion, error)

	// AddWord adds a candidate with its score.
	AddWord(typ, word string, score int) error

	// Stats returns statistics about the loaded candidates.
	Stats() map[string]int
}
