package server

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/recipeserve/recipeserve/internal/logger"
	"github.com/recipeserve/recipeserve/internal/utils"
	"github.com/recipeserve/recipeserve/pkg/config"
	"github.com/recipeserve/recipeserve/pkg/rank"
	"github.com/recipeserve/recipeserve/pkg/suggest"
)

// Server handles the IPC for ingredient autocomplete and recipe ranking.
type Server struct {
	searcher   *suggest.Searcher
	scorer     *rank.Scorer
	cfg        *config.Config
	configPath string

	dec *msgpack.Decoder
	out *bufio.Writer
	enc *msgpack.Encoder
	log *log.Logger

	requestCount int
}

// NewServer creates a server speaking msgpack over stdin/stdout.
// configPath is where config update requests persist to; empty disables
// persistence.
func NewServer(searcher *suggest.Searcher, scorer *rank.Scorer, cfg *config.Config, configPath string) *Server {
	return newServer(os.Stdin, os.Stdout, searcher, scorer, cfg, configPath)
}

func newServer(r io.Reader, w io.Writer, searcher *suggest.Searcher, scorer *rank.Scorer, cfg *config.Config, configPath string) *Server {
	out := bufio.NewWriter(w)
	return &Server{
		searcher:   searcher,
		scorer:     scorer,
		cfg:        cfg,
		configPath: configPath,
		dec:        msgpack.NewDecoder(bufio.NewReader(r)),
		out:        out,
		enc:        msgpack.NewEncoder(out),
		log:        logger.New("ipc"),
	}
}

// Start begins listening for IPC requests. Returns nil on clean client
// disconnect (EOF).
func (s *Server) Start() error {
	s.log.Debug("Starting Server.")

	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		var request Request
		if err := s.dec.Decode(&request); err != nil {
			if err == io.EOF {
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			return err
		}
		s.handleRequest(request)
	}
}

// handleRequest dispatches on the request command
func (s *Server) handleRequest(request Request) {
	s.requestCount++

	switch request.Command {
	case "complete":
		s.handleComplete(request)
	case "rank":
		s.handleRank(request)
	case "config":
		s.handleConfig(request)
	case "health", "status":
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok", Stats: s.searcher.Stats()})
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown command: %s", request.Command), 400)
	}
}

// handleComplete processes an autocomplete request. It validates the
// prefix against the configured bounds and filter, asks the searcher for
// ranked suggestions and sends the response with timing info.
func (s *Server) handleComplete(request Request) {
	prefix := request.Prefix

	if prefix == "" {
		s.sendError(request.ID, "Missing 'p' parameter", 400)
		s.log.Debug("Prefix is empty in request")
		return
	}
	if len(prefix) < s.cfg.Server.MinPrefix {
		s.sendError(request.ID, fmt.Sprintf("Prefix must be at least %d characters", s.cfg.Server.MinPrefix), 400)
		return
	}
	if len(prefix) > s.cfg.Server.MaxPrefix {
		s.sendError(request.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", s.cfg.Server.MaxPrefix), 400)
		return
	}
	if s.cfg.Server.EnableFilter && !utils.IsValidQuery(prefix) {
		// junk input gets an empty result, not an error
		s.sendResponse(CompletionResponse{ID: request.ID, Suggestions: []TokenSuggestion{}})
		return
	}

	limit := request.Limit
	if limit < 1 {
		limit = s.cfg.CLI.DefaultLimit
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	start := time.Now()
	suggestions := s.searcher.Complete(prefix, limit)
	elapsed := time.Since(start)

	out := make([]TokenSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = TokenSuggestion{Token: sg.Token, Matches: sg.Matches}
	}

	s.sendResponse(CompletionResponse{
		ID:          request.ID,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// handleRank processes a recipe ranking request. The dataset is streamed
// per request so results always reflect the file on disk and memory
// stays bounded.
func (s *Server) handleRank(request Request) {
	if len(request.Likes) == 0 && len(request.Dislikes) == 0 {
		s.sendError(request.ID, "Rank request needs at least one liked or disliked ingredient", 400)
		return
	}

	topK := request.TopK
	if topK < 1 {
		topK = s.cfg.Rank.TopK
	}
	if topK > s.cfg.Server.MaxLimit {
		topK = s.cfg.Server.MaxLimit
	}

	start := time.Now()
	pipeline := rank.NewPipeline(s.scorer, topK)
	ranked, err := pipeline.RankFile(
		s.cfg.Dataset.Path,
		s.cfg.Dataset.Columns(),
		s.cfg.Dataset.ChunkSize,
		request.Likes,
		request.Dislikes,
	)
	elapsed := time.Since(start)
	if err != nil {
		s.log.Errorf("Ranking failed: %v", err)
		s.sendError(request.ID, "Failed to rank recipes", 500)
		return
	}

	out := make([]RankedResult, len(ranked))
	for i, r := range ranked {
		out[i] = RankedResult{
			RecipeID: r.ID,
			Name:     r.Name,
			Score:    r.Score,
			Accuracy: r.Accuracy,
			Reviews:  r.Reviews,
		}
	}

	s.sendResponse(RankResponse{
		ID:        request.ID,
		Results:   out,
		Count:     len(out),
		TimeTaken: elapsed.Microseconds(),
	})
}

// handleConfig updates the server tunables and persists them to the
// active config file. Later requests in the same session already see the
// new bounds.
func (s *Server) handleConfig(request Request) {
	if request.MaxLimit == nil && request.MinPrefix == nil &&
		request.MaxPrefix == nil && request.EnableFilter == nil {
		s.sendError(request.ID, "Config request carries no settings", 400)
		return
	}
	if s.configPath == "" {
		s.sendError(request.ID, "No active config file to persist to", 500)
		return
	}

	err := s.cfg.Update(s.configPath, request.MaxLimit, request.MinPrefix, request.MaxPrefix, request.EnableFilter)
	if err != nil {
		s.log.Errorf("Persisting config update: %v", err)
		s.sendResponse(ConfigResponse{ID: request.ID, Status: "error", Error: err.Error()})
		return
	}
	s.log.Debugf("Config updated and saved to %s", s.configPath)
	s.sendResponse(ConfigResponse{ID: request.ID, Status: "ok"})
}

// sendResponse encodes the response and flushes it to the client.
func (s *Server) sendResponse(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		s.log.Errorf("Flushing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
