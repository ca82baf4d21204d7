package index

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/recipeserve/recipeserve/pkg/dataset"
)

// Builder turns a streamed recipe source into an Index.
type Builder struct {
	Separator string
}

// NewBuilder returns a builder splitting ingredient fields on sep.
func NewBuilder(sep string) *Builder {
	if sep == "" {
		sep = dataset.DefaultSeparator
	}
	return &Builder{Separator: sep}
}

// Build drains the reader chunk by chunk and inserts every normalized
// ingredient token with its recipe id. Only source/schema level failures
// abort the build; malformed rows were already dropped by the reader.
func (b *Builder) Build(r *dataset.Reader) (*Index, error) {
	start := time.Now()
	ix := New()
	ix.Source = r.Path()

	for {
		docs, err := r.ReadChunk()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			for _, token := range dataset.SplitTokens(doc.Ingredients, b.Separator) {
				ix.Insert(token, doc.ID)
			}
			ix.Docs++
		}
	}

	ix.BuiltAt = time.Now()
	if skipped := r.Skipped(); skipped > 0 {
		log.Debugf("Build skipped %d malformed rows", skipped)
	}
	log.Debugf("Built index from %s: %d recipes, %d tokens in %v",
		ix.Source, ix.Docs, ix.Tokens, time.Since(start))
	return ix, nil
}
