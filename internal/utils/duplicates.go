package utils

import (
	"strings"
)

// SuggestionFilter drops repeated results while merging several candidate lists.
// Not safe for concurrent use; create one per search.
type SuggestionFilter struct {
	seen map[string]bool
}

// NewSuggestionFilter creates a filter that has seen nothing yet.
func NewSuggestionFilter() *SuggestionFilter {
	return &SuggestionFilter{seen: make(map[string]bool)}
}

// ShouldInclude reports whether key is new, comparing case-insensitively.
// The key is remembered, so a second call with it returns false.
func (f *SuggestionFilter) ShouldInclude(key string) bool {
	lower := strings.ToLower(key)
	if f.seen[lower] {
		return false
	}
	f.seen[lower] = true
	return true
}
