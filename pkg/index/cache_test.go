package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipeserve/recipeserve/pkg/dataset"
)

const cacheCSV = `id,name_clean,ingredients_serialized,review_count
1,Beef Stew,beef;potato,12
`

const cacheCSVUpdated = `id,name_clean,ingredients_serialized,review_count
1,Beef Stew,beef;potato,12
2,Lentil Soup,lentils;cumin,3
`

func newTestCache(t *testing.T) (*Cache, string, string) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "recipes.csv")
	artifact := filepath.Join(dir, "trie.bin")
	require.NoError(t, os.WriteFile(source, []byte(cacheCSV), 0644))
	return NewCache(source, artifact, dataset.DefaultColumns(), ";", 0), source, artifact
}

func TestLoadOrBuildMissingSource(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "nope.csv"), "unused.bin", dataset.DefaultColumns(), ";", 0)
	_, err := c.LoadOrBuild()
	assert.True(t, errors.Is(err, dataset.ErrSourceMissing))
}

func TestLoadOrBuildPersistsFirstBuild(t *testing.T) {
	c, _, artifact := newTestCache(t)

	ix, err := c.LoadOrBuild()
	require.NoError(t, err)
	assert.NotNil(t, ix.Lookup("beef"))
	assert.FileExists(t, artifact)
}

func TestRebuildSuppression(t *testing.T) {
	c, source, artifact := newTestCache(t)

	_, err := c.LoadOrBuild()
	require.NoError(t, err)

	// Change the source content but age its mtime behind the artifact:
	// the snapshot must be reused and the new rows must not show up.
	require.NoError(t, os.WriteFile(source, []byte(cacheCSVUpdated), 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(source, past, past))

	ix, err := c.LoadOrBuild()
	require.NoError(t, err)
	assert.NotNil(t, ix.Lookup("beef"))
	assert.Nil(t, ix.Lookup("lentils"))

	info, err := os.Stat(artifact)
	require.NoError(t, err)
	assert.True(t, info.ModTime().After(past))
}

func TestRebuildTrigger(t *testing.T) {
	c, source, _ := newTestCache(t)

	_, err := c.LoadOrBuild()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(source, []byte(cacheCSVUpdated), 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(source, future, future))

	ix, err := c.LoadOrBuild()
	require.NoError(t, err)
	assert.NotNil(t, ix.Lookup("lentils"))
	assert.Equal(t, 2, ix.Docs)
}

// A corrupt artifact degrades to an empty index and is deliberately NOT
// rebuilt from source. The broken file stays in place until it is removed
// by hand or the source mtime advances past it.
func TestCorruptArtifactYieldsEmptyIndex(t *testing.T) {
	c, _, artifact := newTestCache(t)

	require.NoError(t, os.WriteFile(artifact, []byte("truncated garbage"), 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(artifact, future, future))

	ix, err := c.LoadOrBuild()
	require.NoError(t, err)
	assert.True(t, ix.Empty())

	raw, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "truncated garbage", string(raw))
}

func TestPersistFailureStillReturnsIndex(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "recipes.csv")
	require.NoError(t, os.WriteFile(source, []byte(cacheCSV), 0644))

	// Artifact parent "directory" is a regular file, so persisting fails.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	artifact := filepath.Join(blocker, "trie.bin")

	c := NewCache(source, artifact, dataset.DefaultColumns(), ";", 0)
	ix, err := c.LoadOrBuild()
	require.NoError(t, err)
	assert.NotNil(t, ix.Lookup("beef"))
}
