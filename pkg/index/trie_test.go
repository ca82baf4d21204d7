package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipeserve/recipeserve/pkg/dataset"
)

func TestInsertAndLookup(t *testing.T) {
	ix := New()
	ix.Insert("beef", "1")
	ix.Insert("beet", "2")
	ix.Insert("bee", "3")

	require.NotNil(t, ix.Lookup("beef"))
	assert.Equal(t, []string{"1"}, ix.Lookup("beef").IDs)
	assert.Equal(t, []string{"3"}, ix.Lookup("bee").IDs)

	// interior node without terminal marker
	be := ix.Lookup("be")
	require.NotNil(t, be)
	assert.Empty(t, be.IDs)

	assert.Nil(t, ix.Lookup("bea"))
	assert.Nil(t, ix.Lookup("x"))
	assert.Equal(t, 3, ix.Tokens)
}

func TestPostingsDeduplicateAndKeepOrder(t *testing.T) {
	ix := New()
	ix.Insert("onion", "5")
	ix.Insert("onion", "2")
	ix.Insert("onion", "5")
	ix.Insert("onion", "9")
	ix.Insert("onion", "2")

	assert.Equal(t, []string{"5", "2", "9"}, ix.Lookup("onion").IDs)
	assert.Equal(t, 1, ix.Tokens)
}

func TestInsertIgnoresEmpty(t *testing.T) {
	ix := New()
	ix.Insert("", "1")
	ix.Insert("beef", "")
	assert.True(t, ix.Empty())
}

func TestBuilderFromSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.csv")
	content := `id,name_clean,ingredients_serialized,review_count
1,Beef Stew,Beef ; Potato;carrot,12
2,Roast,beef;onion,4
,bad row,beef,1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := dataset.Open(path, dataset.DefaultColumns(), 0)
	require.NoError(t, err)
	defer r.Close()

	ix, err := NewBuilder(";").Build(r)
	require.NoError(t, err)

	assert.Equal(t, 2, ix.Docs)
	assert.Equal(t, path, ix.Source)
	assert.False(t, ix.BuiltAt.IsZero())
	assert.Equal(t, []string{"1", "2"}, ix.Lookup("beef").IDs)
	assert.Equal(t, []string{"1"}, ix.Lookup("potato").IDs)
	assert.Equal(t, []string{"2"}, ix.Lookup("onion").IDs)
}
