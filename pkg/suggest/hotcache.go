package suggest

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// HotCache keeps the most common ingredient tokens in a patricia trie so
// short, frequent prefixes resolve without walking the full snapshot
// trie. Entries are evicted least-recently-used.
type HotCache struct {
	hotTrie     *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	maxTokens   int
	mu          sync.RWMutex
}

// NewHotCache creates a cache bounded to maxTokens entries.
func NewHotCache(maxTokens int) *HotCache {
	return &HotCache{
		hotTrie:    patricia.NewTrie(),
		accessTime: make(map[string]int64, maxTokens),
		maxTokens:  maxTokens,
	}
}

// Populate seeds the cache with the highest-match tokens of the index.
// Only half the capacity is pre-filled; the rest is left for tokens that
// turn out to be hot at query time.
func (hc *HotCache) Populate(all []Suggestion) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].Matches > all[j].Matches
	})

	count := 0
	maxInitial := hc.maxTokens / 2
	for _, sg := range all {
		if count >= maxInitial {
			break
		}
		hc.hotTrie.Insert(patricia.Prefix(sg.Token), sg.Matches)
		hc.accessTime[sg.Token] = hc.nextAccessTime()
		count++
	}
	log.Debugf("Populated hot cache with %d tokens", count)
}

// Search returns cached suggestions under prefix, refreshing their LRU
// position.
func (hc *HotCache) Search(lowerPrefix string) []Suggestion {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	var results []Suggestion
	err := hc.hotTrie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		token := string(p)
		matches, _ := item.(int)
		hc.accessTime[token] = hc.nextAccessTime()
		results = append(results, Suggestion{Token: token, Matches: matches})
		return nil
	})
	if err != nil {
		log.Errorf("Error searching hot cache: %v", err)
	}
	return results
}

// Add records a token observed hot at query time, evicting the coldest
// entry when full.
func (hc *HotCache) Add(token string, matches int) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if len(hc.accessTime) >= hc.maxTokens {
		hc.evictLRU()
	}
	hc.hotTrie.Insert(patricia.Prefix(token), matches)
	hc.accessTime[token] = hc.nextAccessTime()
}

// Stats exposes cache counters.
func (hc *HotCache) Stats() map[string]int {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	return map[string]int{
		"hotCacheTokens": len(hc.accessTime),
		"maxHotTokens":   hc.maxTokens,
		"hotCacheHits":   int(hc.accessCount),
	}
}

func (hc *HotCache) nextAccessTime() int64 {
	hc.accessCount++
	return hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldestToken string
	var oldestTime int64 = 1<<63 - 1

	for token, accessTime := range hc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestToken = token
		}
	}
	if oldestToken != "" {
		hc.hotTrie.Delete(patricia.Prefix(oldestToken))
		delete(hc.accessTime, oldestToken)
		log.Debugf("Evicted token '%s' from hot cache", oldestToken)
	}
}
