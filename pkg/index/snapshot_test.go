package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func sampleIndex() *Index {
	ix := New()
	ix.Insert("beef", "1")
	ix.Insert("beet", "2")
	ix.Insert("green onion", "3")
	ix.Insert("green onion", "1")
	ix.Source = "recipes.csv"
	ix.Docs = 3
	return ix
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "trie.bin")
	ix := sampleIndex()

	require.NoError(t, Save(ix, path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ix.Source, loaded.Source)
	assert.Equal(t, ix.Tokens, loaded.Tokens)
	assert.Equal(t, ix.Docs, loaded.Docs)
	assert.Equal(t, []string{"1"}, loaded.Lookup("beef").IDs)
	assert.Equal(t, []string{"2"}, loaded.Lookup("beet").IDs)
	assert.Equal(t, []string{"3", "1"}, loaded.Lookup("green onion").IDs)
	assert.Nil(t, loaded.Lookup("gree n"))

	// no stray temp file after a clean save; the lock file stays so every
	// process keeps locking the same inode
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, path+".lock")
}

// Terminal postings live under a reserved NUL-prefixed key so the node map
// can never confuse them with a child edge.
func TestNodeEncodesReservedKey(t *testing.T) {
	ix := New()
	ix.Insert("ab", "7")

	raw, err := msgpack.Marshal(ix.Root)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, msgpack.Unmarshal(raw, &generic))

	a, ok := generic["a"].(map[string]any)
	require.True(t, ok)
	b, ok := a["b"].(map[string]any)
	require.True(t, ok)
	ids, ok := b[idsKey].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"7"}, ids)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trie.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
