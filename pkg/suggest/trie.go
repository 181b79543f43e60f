package suggest

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// entry is the item stored under a lowercased key.
type entry struct {
	word  string
	score int
}

// SearchTrie collects every entry under lowerPrefix whose score reaches minThreshold.
func SearchTrie(trie *patricia.Trie, lowerPrefix string, minThreshold int) []Suggestion {
	if trie == nil {
		return []Suggestion{}
	}

	var suggestions []Suggestion

	err := trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		e, ok := item.(entry)
		if !ok {
			log.Errorf("Unknown item type: %T for key %s", item, p)
			return nil
		}
		if e.score < minThreshold {
			return nil
		}
		suggestions = append(suggestions, Suggestion{
			Word:  e.word,
			Score: e.score,
			Exact: string(p) == lowerPrefix,
		})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
	}

	return suggestions
}
