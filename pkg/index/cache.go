package index

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/recipeserve/recipeserve/pkg/dataset"
)

// Cache decides whether a persisted snapshot can be reused or the index
// has to be rebuilt from the recipe source.
type Cache struct {
	SourcePath   string
	ArtifactPath string
	Columns      dataset.Columns
	Separator    string
	ChunkSize    int
}

// NewCache wires a cache for the given source/artifact pair.
func NewCache(sourcePath, artifactPath string, cols dataset.Columns, sep string, chunkSize int) *Cache {
	return &Cache{
		SourcePath:   sourcePath,
		ArtifactPath: artifactPath,
		Columns:      cols,
		Separator:    sep,
		ChunkSize:    chunkSize,
	}
}

// LoadOrBuild returns a ready index.
//
// Staleness rule: an artifact whose mtime is >= the source's mtime is
// reused as-is; otherwise the index is rebuilt from source and persisted.
// A persist failure is downgraded to a warning and the freshly built
// in-memory index is returned anyway (it will simply be rebuilt next run).
//
// An unreadable artifact degrades to an empty index without rebuilding.
// A corrupt cache therefore yields no results until the file is removed
// or the source advances past it. Intentional; pinned by tests.
func (c *Cache) LoadOrBuild() (*Index, error) {
	srcInfo, err := os.Stat(c.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", dataset.ErrSourceMissing, c.SourcePath)
		}
		return nil, fmt.Errorf("failed to stat recipe source %s: %w", c.SourcePath, err)
	}

	if artInfo, err := os.Stat(c.ArtifactPath); err == nil {
		if !artInfo.ModTime().Before(srcInfo.ModTime()) {
			ix, err := Load(c.ArtifactPath)
			if err != nil {
				log.Warnf("Artifact unreadable, serving an empty index: %v", err)
				return New(), nil
			}
			log.Debugf("Reusing snapshot %s (%d tokens)", c.ArtifactPath, ix.Tokens)
			return ix, nil
		}
		log.Debugf("Source newer than snapshot, rebuilding from %s", c.SourcePath)
	}

	reader, err := dataset.Open(c.SourcePath, c.Columns, c.ChunkSize)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	ix, err := NewBuilder(c.Separator).Build(reader)
	if err != nil {
		return nil, err
	}

	if err := Save(ix, c.ArtifactPath); err != nil {
		log.Warnf("Could not persist index snapshot, keeping in-memory index for this session: %v", err)
	}
	return ix, nil
}
