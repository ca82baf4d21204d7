// Package suggest answers live prefix queries against a built ingredient
// index and ranks the matching tokens for autocomplete display.
package suggest

import (
	"sort"

	"github.com/recipeserve/recipeserve/pkg/dataset"
	"github.com/recipeserve/recipeserve/pkg/index"
)

// Suggestion is one autocomplete candidate. Matches is how many recipes
// contain the token, which doubles as the display ranking signal.
type Suggestion struct {
	Token   string
	Matches int
}

// Searcher walks an immutable index. Safe for concurrent use: the index
// never mutates after build and the hot cache does its own locking.
type Searcher struct {
	index *index.Index
	hot   *HotCache
}

// NewSearcher wraps a built or loaded index.
func NewSearcher(ix *index.Index) *Searcher {
	return &Searcher{index: ix}
}

// NewSearcherWithCache additionally seeds a patricia-backed hot cache with
// the most common tokens. hotSize <= 0 disables the cache.
func NewSearcherWithCache(ix *index.Index, hotSize int) *Searcher {
	s := NewSearcher(ix)
	if hotSize > 0 {
		s.hot = NewHotCache(hotSize)
		s.hot.Populate(s.collect(""))
	}
	return s
}

// frame is one pending step of the iterative trie walk.
type frame struct {
	node *index.Node
	word string
}

// Search returns every indexed token starting with prefix. The empty
// prefix returns nothing rather than the whole vocabulary. Result order
// is whatever the work stack produced; callers needing ranked output use
// Complete.
func (s *Searcher) Search(prefix string) []string {
	lower := dataset.NormalizeTerm(prefix)
	if lower == "" {
		return nil
	}
	suggestions := s.collect(lower)
	if len(suggestions) == 0 {
		return nil
	}
	tokens := make([]string, len(suggestions))
	for i, sg := range suggestions {
		tokens[i] = sg.Token
	}
	return tokens
}

// collect gathers all terminal tokens at or below the node the prefix
// leads to. The traversal uses an explicit work stack instead of
// recursion so a deep vocabulary cannot exhaust call-stack space.
// An empty prefix is only meaningful internally (hot cache seeding).
func (s *Searcher) collect(prefix string) []Suggestion {
	if s.index == nil {
		return nil
	}
	start := s.index.Lookup(prefix)
	if start == nil {
		return nil
	}

	var suggestions []Suggestion
	stack := []frame{{node: start, word: prefix}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(top.node.IDs) > 0 && top.word != "" {
			suggestions = append(suggestions, Suggestion{Token: top.word, Matches: len(top.node.IDs)})
		}
		for char, child := range top.node.Children {
			stack = append(stack, frame{node: child, word: top.word + char})
		}
	}
	return suggestions
}

// Complete returns up to limit suggestions for prefix, best first:
// most recipe matches, then lexicographic for determinism. The hot cache
// is consulted first and the full trie only walked when it cannot fill
// the limit.
func (s *Searcher) Complete(prefix string, limit int) []Suggestion {
	lower := dataset.NormalizeTerm(prefix)
	if lower == "" {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	var suggestions []Suggestion
	fellBack := false
	if s.hot != nil {
		suggestions = s.hot.Search(lower)
	}
	if len(suggestions) < limit {
		fellBack = true
		suggestions = mergeSuggestions(suggestions, s.collect(lower))
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Matches != suggestions[j].Matches {
			return suggestions[i].Matches > suggestions[j].Matches
		}
		return suggestions[i].Token < suggestions[j].Token
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	// Tokens the cache could not serve turned out hot; promote the ones
	// that made the cut so repeat queries skip the full walk.
	if s.hot != nil && fellBack {
		for _, sg := range suggestions {
			s.hot.Add(sg.Token, sg.Matches)
		}
	}
	return suggestions
}

// Postings returns the recipe ids recorded for an exact token, or nil.
func (s *Searcher) Postings(token string) []string {
	if s.index == nil {
		return nil
	}
	node := s.index.Lookup(dataset.NormalizeTerm(token))
	if node == nil || len(node.IDs) == 0 {
		return nil
	}
	ids := make([]string, len(node.IDs))
	copy(ids, node.IDs)
	return ids
}

// Stats reports sizes for the status/health surface.
func (s *Searcher) Stats() map[string]int {
	stats := map[string]int{}
	if s.index != nil {
		stats["tokens"] = s.index.Tokens
		stats["recipes"] = s.index.Docs
	}
	if s.hot != nil {
		for k, v := range s.hot.Stats() {
			stats[k] = v
		}
	}
	return stats
}

// mergeSuggestions unions two result sets, dropping duplicate tokens.
func mergeSuggestions(a, b []Suggestion) []Suggestion {
	if len(a) == 0 {
		return b
	}
	seen := make(map[string]bool, len(a))
	for _, sg := range a {
		seen[sg.Token] = true
	}
	for _, sg := range b {
		if !seen[sg.Token] {
			seen[sg.Token] = true
			a = append(a, sg)
		}
	}
	return a
}
