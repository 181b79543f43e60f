package suggest

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

const keySep = "\x00"

type cachedResult struct {
	suggestions []Suggestion
	limit       int
}

// HotCache keeps the ranked suggestions of recently served prefixes.
// Keys are "type\x00prefix" so adding a word can drop every cached prefix of it.
type HotCache struct {
	hotTrie     *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	maxEntries  int
	mu          sync.Mutex
}

func NewHotCache(maxEntries int) *HotCache {
	return &HotCache{
		hotTrie:    patricia.NewTrie(),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

func cacheKey(typ, lowerPrefix string) string {
	return typ + keySep + lowerPrefix
}

// Get returns cached suggestions computed with at least limit results.
func (hc *HotCache) Get(typ, lowerPrefix string, limit int) ([]Suggestion, bool) {
	if hc == nil || hc.maxEntries <= 0 {
		return nil, false
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	key := cacheKey(typ, lowerPrefix)
	item := hc.hotTrie.Get(patricia.Prefix(key))
	if item == nil {
		return nil, false
	}
	cached := item.(cachedResult)
	// a short list is complete, a full list only covers smaller limits
	if len(cached.suggestions) >= cached.limit && cached.limit < limit {
		return nil, false
	}

	hc.markAccessed(key)
	hc.hits++
	n := min(limit, len(cached.suggestions))
	return append([]Suggestion(nil), cached.suggestions[:n]...), true
}

// Put stores the suggestions computed for a prefix with the given limit.
func (hc *HotCache) Put(typ, lowerPrefix string, limit int, suggestions []Suggestion) {
	if hc == nil || hc.maxEntries <= 0 {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	key := cacheKey(typ, lowerPrefix)
	if _, exists := hc.accessTime[key]; !exists && len(hc.accessTime) >= hc.maxEntries {
		hc.evictLRU()
	}
	hc.hotTrie.Set(patricia.Prefix(key), cachedResult{
		suggestions: append([]Suggestion(nil), suggestions...),
		limit:       limit,
	})
	hc.markAccessed(key)
}

// Invalidate drops every cached prefix of word for the type.
func (hc *HotCache) Invalidate(typ, lowerWord string) {
	if hc == nil {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	var stale []patricia.Prefix
	err := hc.hotTrie.VisitPrefixes(patricia.Prefix(cacheKey(typ, lowerWord)), func(p patricia.Prefix, item patricia.Item) error {
		stale = append(stale, append(patricia.Prefix(nil), p...))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting hot cache prefixes: %v", err)
	}

	for _, p := range stale {
		hc.hotTrie.Delete(p)
		delete(hc.accessTime, string(p))
	}
}

// Clear drops all cached entries of a type.
func (hc *HotCache) Clear(typ string) {
	if hc == nil {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.hotTrie.DeleteSubtree(patricia.Prefix(typ + keySep))
	for key := range hc.accessTime {
		if strings.HasPrefix(key, typ+keySep) {
			delete(hc.accessTime, key)
		}
	}
}

func (hc *HotCache) Stats() map[string]int {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return map[string]int{
		"hotCacheEntries": len(hc.accessTime),
		"maxHotEntries":   hc.maxEntries,
		"hotCacheHits":    int(hc.hits),
	}
}

func (hc *HotCache) markAccessed(key string) {
	hc.accessCount++
	hc.accessTime[key] = hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, accessTime := range hc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		hc.hotTrie.Delete(patricia.Prefix(oldestKey))
		delete(hc.accessTime, oldestKey)
		log.Debugf("Evicted '%s' from hot cache", strings.ReplaceAll(oldestKey, keySep, ":"))
	}
}
