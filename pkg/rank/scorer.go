/*
Package rank scores recipes against liked and disliked ingredient lists
and produces the ranked results surface.

Scoring is independent of the autocomplete trie: every document's
ingredient field is re-tokenized with the same normalization rules, so
the two subsystems can never drift apart on casing or separators.
*/
package rank

import (
	"strings"

	"github.com/recipeserve/recipeserve/pkg/dataset"
)

// Disqualified is the sentinel score for a vetoed recipe: any disliked
// term appearing inside any ingredient token rules the recipe out no
// matter how many liked terms also match.
const Disqualified = -1

// DefaultWeight is the points awarded per matched liked term.
const DefaultWeight = 10

// ScoreResult is the outcome of scoring one recipe.
type ScoreResult struct {
	ID       string
	Score    int
	Accuracy float64
}

// RankedRecipe joins a score with the display fields of the recipe.
type RankedRecipe struct {
	ID       string
	Name     string
	Score    int
	Accuracy float64
	Reviews  int
}

// Scorer computes veto-aware match scores.
type Scorer struct {
	Separator string
	Weight    int
}

// NewScorer returns a scorer, substituting the dataset separator and
// DefaultWeight for zero values.
func NewScorer(sep string, weight int) *Scorer {
	if sep == "" {
		sep = dataset.DefaultSeparator
	}
	if weight <= 0 {
		weight = DefaultWeight
	}
	return &Scorer{Separator: sep, Weight: weight}
}

// NormalizeTerms folds, trims and deduplicates user supplied like/dislike
// terms; empty terms disappear.
func NormalizeTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		t := dataset.NormalizeTerm(term)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Score evaluates one recipe. Matching is substring containment against
// each ingredient token, so disliking "onion" also vetoes "green onion".
// A recipe without a usable ingredient field is disqualified outright.
func (s *Scorer) Score(doc dataset.Document, likes, dislikes []string) ScoreResult {
	return s.score(doc, NormalizeTerms(likes), NormalizeTerms(dislikes))
}

// score assumes pre-normalized term lists; the pipeline normalizes once
// per query instead of once per document.
func (s *Scorer) score(doc dataset.Document, likes, dislikes []string) ScoreResult {
	res := ScoreResult{ID: doc.ID}

	tokens := dataset.SplitTokens(doc.Ingredients, s.Separator)
	if len(tokens) == 0 {
		res.Score = Disqualified
		return res
	}

	for _, dislike := range dislikes {
		if anyTokenContains(tokens, dislike) {
			res.Score = Disqualified
			return res
		}
	}

	matches := 0
	for _, like := range likes {
		if anyTokenContains(tokens, like) {
			matches++
		}
	}
	res.Score = matches * s.Weight

	maxPossible := len(likes) * s.Weight
	if maxPossible > 0 {
		res.Accuracy = float64(res.Score) / float64(maxPossible) * 100
	}
	return res
}

func anyTokenContains(tokens []string, term string) bool {
	for _, token := range tokens {
		if strings.Contains(token, term) {
			return true
		}
	}
	return false
}
