package suggest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bastiangx/mentionserve/internal/utils"
	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/bastiangx/mentionserve/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

const (
	DefaultLimit        = 10
	DefaultHotCacheSize = 2048
)

var ErrUnknownType = errors.New("unknown candidate type")

// Suggestion is one ranked candidate of a single type.
type Suggestion struct {
	Word  string
	Score int
	// Exact is set when the candidate equals the typed prefix.
	Exact bool `json:",omitempty"`
	// Fuzzy is set when the candidate only matched as a subsequence.
	Fuzzy bool `json:",omitempty"`
}

// TypeSpec declares a candidate type. Trigger is stripped from typed words
// before lookup and prepended to replacements.
type TypeSpec struct {
	Name    string
	Trigger string
}

// Options tunes ranking and caching.
type Options struct {
	MinScore     int
	Limit        int
	HotCacheSize int
	Fuzzy        bool
}

type typeIndex struct {
	spec  TypeSpec
	trie  *patricia.Trie
	words map[string]entry
	max   int
}

// Index holds one trie of candidates per type.
type Index struct {
	mu       sync.RWMutex
	types    map[string]*typeIndex
	order    []string
	hotCache *HotCache
	opts     Options
}

var _ ICompleter = (*Index)(nil)

func NewIndex(specs []TypeSpec, opts Options) *Index {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	idx := &Index{
		types:    make(map[string]*typeIndex, len(specs)),
		hotCache: NewHotCache(opts.HotCacheSize),
		opts:     opts,
	}
	for _, spec := range specs {
		if _, dup := idx.types[spec.Name]; dup {
			log.Warnf("Duplicate candidate type %q ignored", spec.Name)
			continue
		}
		idx.types[spec.Name] = &typeIndex{
			spec:  spec,
			trie:  patricia.NewTrie(),
			words: make(map[string]entry),
		}
		idx.order = append(idx.order, spec.Name)
	}
	return idx
}

// Types returns the type names in declaration order.
func (idx *Index) Types() []string {
	return append([]string(nil), idx.order...)
}

// Spec returns the declaration of a type.
func (idx *Index) Spec(typ string) (TypeSpec, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ti, ok := idx.types[typ]
	if !ok {
		return TypeSpec{}, false
	}
	return ti.spec, true
}

// AddWord inserts or replaces a candidate. A leading trigger on word is dropped.
func (idx *Index) AddWord(typ, word string, score int) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	ti, ok := idx.types[typ]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	word = utils.StripTrigger(word, ti.spec.Trigger)
	if !utils.IsValidCandidate(word) {
		return fmt.Errorf("invalid candidate %q", word)
	}
	idx.addLocked(ti, word, score)
	return nil
}

func (idx *Index) addLocked(ti *typeIndex, word string, score int) {
	key := lowerKey(word)
	e := entry{word: word, score: score}
	ti.trie.Set(patricia.Prefix(key), e)
	ti.words[key] = e
	if score > ti.max {
		ti.max = score
	}
	idx.hotCache.Invalidate(ti.spec.Name, key)
}

// AddEntries bulk loads candidates of one type.
func (idx *Index) AddEntries(typ string, entries []dictionary.Entry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	ti, ok := idx.types[typ]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	for _, e := range entries {
		word := utils.StripTrigger(e.Word, ti.spec.Trigger)
		if !utils.IsValidCandidate(word) {
			continue
		}
		idx.addLocked(ti, word, e.Score)
	}
	idx.hotCache.Clear(typ)
	return nil
}

// LoadDir loads the dictionaries of a data directory into the index.
// Files for undeclared types are skipped.
func (idx *Index) LoadDir(ctx context.Context, dir string) (dictionary.LoaderStats, error) {
	sets, stats, err := dictionary.LoadDir(ctx, dir)
	if err != nil {
		return stats, err
	}
	for _, set := range sets {
		if err := idx.AddEntries(set.Type, set.Entries); err != nil {
			if errors.Is(err, ErrUnknownType) {
				log.Warnf("Skipping %s: no candidate type %q is configured", set.Path, set.Type)
				continue
			}
			return stats, err
		}
	}
	return stats, nil
}

// Complete returns ranked suggestions of one type for a prefix.
// Exact matches rank first, then higher scores, then alphabetical order.
// When nothing shares the prefix, a fuzzy subsequence match is attempted.
func (idx *Index) Complete(typ, prefix string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = idx.opts.Limit
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ti, ok := idx.types[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	lowerPrefix := lowerKey(utils.StripTrigger(prefix, ti.spec.Trigger))

	if cached, ok := idx.hotCache.Get(typ, lowerPrefix, limit); ok {
		return cached, nil
	}

	suggestions := SearchTrie(ti.trie, lowerPrefix, idx.opts.MinScore)
	sortSuggestions(suggestions)
	if len(suggestions) == 0 && idx.opts.Fuzzy {
		// fuzzy lists are not cached: adding a word only invalidates its prefixes
		suggestions = fuzzyCandidates(lowerPrefix, ti.words, idx.opts.MinScore)
		return truncate(suggestions, limit), nil
	}

	suggestions = truncate(suggestions, limit)
	idx.hotCache.Put(typ, lowerPrefix, limit, suggestions)
	return suggestions, nil
}

func truncate(suggestions []Suggestion, limit int) []Suggestion {
	if len(suggestions) > limit {
		return suggestions[:limit]
	}
	return suggestions
}

func sortSuggestions(suggestions []Suggestion) {
	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Exact != b.Exact {
			return a.Exact
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Word < b.Word
	})
}

// Search implements autocomplete.Searcher with the default limit.
func (idx *Index) Search(ctx context.Context, params autocomplete.SearchParams) ([]autocomplete.Result, error) {
	return idx.SearchN(ctx, params, idx.opts.Limit)
}

// SearchN merges the suggestions of every requested type into one ranked list.
// Unknown types are skipped; the search fails only when none is known.
func (idx *Index) SearchN(ctx context.Context, params autocomplete.SearchParams, limit int) ([]autocomplete.Result, error) {
	if limit <= 0 {
		limit = idx.opts.Limit
	}

	type ranked struct {
		autocomplete.Result
		exact bool
		order int
	}

	var merged []ranked
	known := 0
	filter := utils.NewSuggestionFilter()
	for i, typ := range params.Types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spec, ok := idx.Spec(typ)
		if !ok {
			log.Debugf("Search skipped unknown type %q", typ)
			continue
		}
		known++

		suggestions, err := idx.Complete(typ, params.Word, limit)
		if err != nil {
			return nil, err
		}
		for _, s := range suggestions {
			replacement := spec.Trigger + s.Word
			if !filter.ShouldInclude(replacement) {
				continue
			}
			merged = append(merged, ranked{
				Result: autocomplete.Result{
					Type:        typ,
					Label:       s.Word,
					Replacement: replacement,
					Score:       s.Score,
				},
				exact: s.Exact,
				order: i,
			})
		}
	}
	if known == 0 && len(params.Types) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, params.Types)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.exact != b.exact {
			return a.exact
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.order < b.order
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	results := make([]autocomplete.Result, len(merged))
	for i, r := range merged {
		results[i] = r.Result
	}
	return results, nil
}

// Stats returns candidate counts per type plus hot cache figures.
func (idx *Index) Stats() map[string]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	stats := idx.hotCache.Stats()
	total := 0
	for name, ti := range idx.types {
		stats["words."+name] = len(ti.words)
		stats["maxScore."+name] = ti.max
		total += len(ti.words)
	}
	stats["totalWords"] = total
	stats["types"] = len(idx.types)
	return stats
}
