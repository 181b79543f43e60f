package suggest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var benchPatterns = [][]string{
	{"@a", "@al", "@ali", "@alic", "@alice"},
	{"@u", "@us", "@use", "@user", "@user1"},
	{"@w", "@wo", "@wor", "@worl", "@world"},
}

func benchIndex(b testing.TB) *Index {
	idx := NewIndex([]TypeSpec{{Name: "user", Trigger: "@"}}, Options{HotCacheSize: DefaultHotCacheSize})
	for i := 0; i < 20000; i++ {
		if err := idx.AddWord("user", fmt.Sprintf("user%d", i), i%997); err != nil {
			b.Fatal(err)
		}
	}
	for _, w := range []string{"alice", "alina", "world", "worldwide"} {
		if err := idx.AddWord("user", w, 1000); err != nil {
			b.Fatal(err)
		}
	}
	return idx
}

func BenchmarkCompleteTyping(b *testing.B) {
	idx := benchIndex(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, prefix := range benchPatterns[i%len(benchPatterns)] {
			if _, err := idx.Complete("user", prefix, DefaultLimit); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func TestConcurrentSearchAndAdd(t *testing.T) {
	idx := benchIndex(t)
	workers := 8

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				pattern := benchPatterns[(w+i)%len(benchPatterns)]
				params := autocomplete.SearchParams{Types: []string{"user"}, Word: pattern[i%len(pattern)]}
				if _, err := idx.Search(context.Background(), params); err != nil {
					t.Error(err)
					return
				}
				if i%50 == 0 {
					if err := idx.AddWord("user", fmt.Sprintf("worker%d_%d", w, i), i); err != nil {
						t.Error(err)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()
}
