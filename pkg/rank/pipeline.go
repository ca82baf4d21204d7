package rank

import (
	"sort"

	"github.com/recipeserve/recipeserve/pkg/dataset"
)

// DefaultTopK is how many ranked recipes a query returns unless the
// caller asks for more.
const DefaultTopK = 5

// Pipeline scores, filters, sorts and truncates recipe sets.
type Pipeline struct {
	scorer *Scorer
	topK   int
}

// NewPipeline wires a pipeline around scorer. topK <= 0 falls back to
// DefaultTopK.
func NewPipeline(scorer *Scorer, topK int) *Pipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Pipeline{scorer: scorer, topK: topK}
}

// Rank scores every document, drops the disqualified ones and returns the
// topK best: score descending, review count descending, ties keeping
// their input order. Empty input or a fully vetoed set yields an empty
// result, never an error.
func (p *Pipeline) Rank(docs []dataset.Document, likes, dislikes []string) []RankedRecipe {
	likes = NormalizeTerms(likes)
	dislikes = NormalizeTerms(dislikes)

	ranked := p.scoreBatch(docs, likes, dislikes)
	sortRanked(ranked)
	return truncate(ranked, p.topK)
}

// RankFile streams the recipe source chunk by chunk, carrying only the
// current topK between chunks so memory stays bounded on large datasets.
// The merge is equivalent to ranking the whole file at once: within equal
// (score, reviews) keys earlier rows always precede later ones.
func (p *Pipeline) RankFile(path string, cols dataset.Columns, chunkSize int, likes, dislikes []string) ([]RankedRecipe, error) {
	likes = NormalizeTerms(likes)
	dislikes = NormalizeTerms(dislikes)

	r, err := dataset.Open(path, cols, chunkSize)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var best []RankedRecipe
	for {
		docs, err := r.ReadChunk()
		if err != nil {
			break // io.EOF is the only error ReadChunk returns
		}
		best = append(best, p.scoreBatch(docs, likes, dislikes)...)
		sortRanked(best)
		best = truncate(best, p.topK)
	}
	return best, nil
}

func (p *Pipeline) scoreBatch(docs []dataset.Document, likes, dislikes []string) []RankedRecipe {
	ranked := make([]RankedRecipe, 0, len(docs))
	for _, doc := range docs {
		res := p.scorer.score(doc, likes, dislikes)
		if res.Score == Disqualified {
			continue
		}
		ranked = append(ranked, RankedRecipe{
			ID:       res.ID,
			Name:     doc.Name,
			Score:    res.Score,
			Accuracy: res.Accuracy,
			Reviews:  doc.Reviews,
		})
	}
	return ranked
}

func sortRanked(ranked []RankedRecipe) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Reviews > ranked[j].Reviews
	})
}

func truncate(ranked []RankedRecipe, topK int) []RankedRecipe {
	if len(ranked) > topK {
		return ranked[:topK]
	}
	return ranked
}
