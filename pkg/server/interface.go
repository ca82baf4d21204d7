/*
Package server implements msgpack IPC for recipe discovery services.

The server provides a minimal request/response interface over stdin/stdout
using binary msgpack encoding. Two query surfaces are exposed: ingredient
autocomplete and ranked recipe search. Messages are processed
synchronously with timing info included in responses.

# IPC

Clients write structured messages to stdin and read responses from
stdout. Each message carries an ID field, a command and the fields that
command needs.

Completion requests use this structure:

	{"id": "req_001", "cmd": "complete", "p": "oni", "l": 24}

The server responds with tokens ranked by how many recipes contain them:

	{"id": "req_001", "s": [{"t": "onion", "m": 1542}, {"t": "onion powder", "m": 420}], "c": 2, "t": 145}

Rank requests carry the liked and disliked ingredient lists:

	{"id": "rank_001", "cmd": "rank", "likes": ["beef", "potato"], "dislikes": ["onion"], "k": 5}

and yield scored recipes, best first:

	{"id": "rank_001", "r": [{"rid": "812", "name": "Beef Stew", "score": 20, "acc": 100}], "c": 1, "t": 9120}

A config command adjusts the server tunables at runtime and persists
them to the active TOML file:

	{"id": "cfg_001", "cmd": "config", "max_limit": 32, "enable_filter": false}

A health command returns index statistics. Errors come back as
structured responses with a code; the process never exits on a bad
request.
*/
package server

// Request is the envelope every incoming message decodes into; the
// command decides which fields matter. The config fields are pointers so
// an absent key can be told apart from an explicit zero.
type Request struct {
	ID       string   `msgpack:"id"`
	Command  string   `msgpack:"cmd"`
	Prefix   string   `msgpack:"p,omitempty"`
	Limit    int      `msgpack:"l,omitempty"`
	Likes    []string `msgpack:"likes,omitempty"`
	Dislikes []string `msgpack:"dislikes,omitempty"`
	TopK     int      `msgpack:"k,omitempty"`

	MaxLimit     *int  `msgpack:"max_limit,omitempty"`
	MinPrefix    *int  `msgpack:"min_prefix,omitempty"`
	MaxPrefix    *int  `msgpack:"max_prefix,omitempty"`
	EnableFilter *bool `msgpack:"enable_filter,omitempty"`
}

// TokenSuggestion - one autocomplete candidate
type TokenSuggestion struct {
	Token   string `msgpack:"t"`
	Matches int    `msgpack:"m"`
}

// CompletionResponse - autocomplete response
type CompletionResponse struct {
	ID          string            `msgpack:"id"`
	Suggestions []TokenSuggestion `msgpack:"s"`
	Count       int               `msgpack:"c"`
	TimeTaken   int64             `msgpack:"t"`
}

// RankedResult - one scored recipe
type RankedResult struct {
	RecipeID string  `msgpack:"rid"`
	Name     string  `msgpack:"name"`
	Score    int     `msgpack:"score"`
	Accuracy float64 `msgpack:"acc"`
	Reviews  int     `msgpack:"reviews,omitempty"`
}

// RankResponse - ranked recipe search response
type RankResponse struct {
	ID        string         `msgpack:"id"`
	Results   []RankedResult `msgpack:"r"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"`
}

// StatusResponse - health and readiness information
type StatusResponse struct {
	ID     string         `msgpack:"id,omitempty"`
	Status string         `msgpack:"status"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
}

// ConfigResponse - config update outcome
type ConfigResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Error  string `msgpack:"error,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id,omitempty"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
