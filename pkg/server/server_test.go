package server

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/recipeserve/recipeserve/pkg/config"
	"github.com/recipeserve/recipeserve/pkg/dataset"
	"github.com/recipeserve/recipeserve/pkg/index"
	"github.com/recipeserve/recipeserve/pkg/rank"
	"github.com/recipeserve/recipeserve/pkg/suggest"
)

const serverCSV = `id,name_clean,ingredients_serialized,review_count
1,Beef Stew,beef;potato;carrot,120
2,Onion Soup,onion;butter,45
3,Beef Roast,beef;potato,10
`

// runServer feeds the encoded requests through a server wired to a small
// dataset and returns the raw response stream.
func runServer(t *testing.T, requests ...Request) *msgpack.Decoder {
	t.Helper()

	path := filepath.Join(t.TempDir(), "recipes.csv")
	require.NoError(t, os.WriteFile(path, []byte(serverCSV), 0644))

	cfg := config.DefaultConfig()
	cfg.Dataset.Path = path

	docs, err := dataset.ReadAll(path, cfg.Dataset.Columns(), 0)
	require.NoError(t, err)
	ix := index.New()
	for _, doc := range docs {
		for _, token := range dataset.SplitTokens(doc.Ingredients, ";") {
			ix.Insert(token, doc.ID)
		}
		ix.Docs++
	}

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		require.NoError(t, enc.Encode(req))
	}

	var out bytes.Buffer
	srv := newServer(&in, &out, suggest.NewSearcher(ix), rank.NewScorer(";", 10), cfg, "")
	require.NoError(t, srv.Start())

	return msgpack.NewDecoder(&out)
}

func decodeReady(t *testing.T, dec *msgpack.Decoder) {
	t.Helper()
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
}

func TestServerComplete(t *testing.T) {
	dec := runServer(t, Request{ID: "r1", Command: "complete", Prefix: "be", Limit: 10})
	decodeReady(t, dec)

	var resp CompletionResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "r1", resp.ID)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, TokenSuggestion{Token: "beef", Matches: 2}, resp.Suggestions[0])
}

func TestServerRank(t *testing.T) {
	dec := runServer(t, Request{
		ID:       "r2",
		Command:  "rank",
		Likes:    []string{"beef", "potato", "carrot"},
		Dislikes: []string{"onion"},
		TopK:     5,
	})
	decodeReady(t, dec)

	var resp RankResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "r2", resp.ID)
	require.Equal(t, 2, resp.Count)
	// full match first, Onion Soup vetoed entirely
	assert.Equal(t, "1", resp.Results[0].RecipeID)
	assert.Equal(t, 30, resp.Results[0].Score)
	assert.Equal(t, 100.0, resp.Results[0].Accuracy)
	assert.Equal(t, "3", resp.Results[1].RecipeID)
	assert.Equal(t, 20, resp.Results[1].Score)
}

func TestServerValidation(t *testing.T) {
	dec := runServer(t,
		Request{ID: "bad1", Command: "complete"},            // missing prefix
		Request{ID: "bad2", Command: "rank"},                // no terms at all
		Request{ID: "bad3", Command: "explode"},             // unknown command
		Request{ID: "ok", Command: "complete", Prefix: "?"}, // filtered input
	)
	decodeReady(t, dec)

	for _, id := range []string{"bad1", "bad2", "bad3"} {
		var errResp ErrorResponse
		require.NoError(t, dec.Decode(&errResp))
		assert.Equal(t, id, errResp.ID)
		assert.Equal(t, 400, errResp.Code)
	}

	var resp CompletionResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "ok", resp.ID)
	assert.Zero(t, resp.Count)
}

func TestServerConfigUpdate(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()

	maxLimit := 32
	enableFilter := false
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	require.NoError(t, enc.Encode(Request{
		ID: "c1", Command: "config",
		MaxLimit: &maxLimit, EnableFilter: &enableFilter,
	}))
	require.NoError(t, enc.Encode(Request{ID: "c2", Command: "config"}))

	var out bytes.Buffer
	srv := newServer(&in, &out, suggest.NewSearcher(index.New()), rank.NewScorer(";", 10), cfg, cfgPath)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	decodeReady(t, dec)

	var resp ConfigResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "c1", resp.ID)
	assert.Equal(t, "ok", resp.Status)

	// a config request without settings is rejected
	var errResp ErrorResponse
	require.NoError(t, dec.Decode(&errResp))
	assert.Equal(t, "c2", errResp.ID)
	assert.Equal(t, 400, errResp.Code)

	// in-memory view and the persisted file both carry the update
	assert.Equal(t, 32, cfg.Server.MaxLimit)
	assert.False(t, cfg.Server.EnableFilter)

	saved, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 32, saved.Server.MaxLimit)
	assert.False(t, saved.Server.EnableFilter)
	assert.Equal(t, 1, saved.Server.MinPrefix, "untouched tunables keep their defaults")
}

func TestServerHealth(t *testing.T) {
	dec := runServer(t, Request{ID: "h1", Command: "health"})
	decodeReady(t, dec)

	var resp StatusResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, resp.Stats["tokens"])
	assert.Equal(t, 3, resp.Stats["recipes"])
}
