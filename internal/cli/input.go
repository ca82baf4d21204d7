// Package cli handles cmd line input for DBG and testing the suggest and
// rank surfaces in real time
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/recipeserve/recipeserve/internal/utils"
	"github.com/recipeserve/recipeserve/pkg/config"
	"github.com/recipeserve/recipeserve/pkg/rank"
	"github.com/recipeserve/recipeserve/pkg/suggest"
)

// InputHandler processes user input from stdin. Plain text is treated as
// an ingredient prefix and answered with autocomplete suggestions; lines
// starting with "/" run a ranked recipe query of the form
//
//	/beef, potato ; onion
//
// where terms before ";" are liked and terms after are disliked.
type InputHandler struct {
	searcher        *suggest.Searcher
	scorer          *rank.Scorer
	cfg             *config.Config
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	topK            int
	requestCount    int
	noFilter        bool
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(searcher *suggest.Searcher, scorer *rank.Scorer, cfg *config.Config, limit, topK int, noFilter bool) *InputHandler {
	return &InputHandler{
		searcher:        searcher,
		scorer:          scorer,
		cfg:             cfg,
		minPrefixLength: cfg.Server.MinPrefix,
		maxPrefixLength: cfg.Server.MaxPrefix,
		suggestLimit:    limit,
		topK:            topK,
		noFilter:        noFilter,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to the handlers for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("RecipeServe CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type an ingredient prefix for suggestions, or '/likes ; dislikes' to rank recipes (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.requestCount++

		if strings.HasPrefix(line, "/") {
			h.handleRank(strings.TrimPrefix(line, "/"))
			continue
		}
		h.handlePrefix(line)
	}
}

// handlePrefix validates a single prefix and prints the ranked suggestions.
func (h *InputHandler) handlePrefix(prefix string) {
	if len(prefix) < h.minPrefixLength {
		log.Errorf("Prefix too short: %s", prefix)
		return
	}
	if len(prefix) > h.maxPrefixLength {
		log.Errorf("Prefix too long: %s", prefix)
		return
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter {
		if !utils.IsValidQuery(prefix) {
			log.Infof("No results found for prefix: '%s'", prefix)
			return
		}
	} else {
		log.Debug("Input filtering disabled - querying raw input")
	}

	start := time.Now()
	log.Debug("Processing request for", "prefix", prefix)

	suggestions := h.searcher.Complete(prefix, h.suggestLimit)

	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	log.Printf("Found %d suggestions for prefix '%s':", len(suggestions), prefix)
	for i, s := range suggestions {
		fmtMatches := utils.FormatWithCommas(s.Matches)
		clToken := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Token)
		log.Printf("%2d. %-40s (recipes: %8s)", i+1, clToken, fmtMatches)
	}
}

// handleRank parses "likes ; dislikes" and streams the dataset through
// the ranking pipeline.
func (h *InputHandler) handleRank(query string) {
	likes, dislikes := splitRankQuery(query)
	if len(likes) == 0 && len(dislikes) == 0 {
		log.Error("Rank query needs at least one ingredient, e.g. /beef, potato ; onion")
		return
	}

	start := time.Now()
	log.Debug("Processing rank request", "likes", likes, "dislikes", dislikes)

	pipeline := rank.NewPipeline(h.scorer, h.topK)
	ranked, err := pipeline.RankFile(h.cfg.Dataset.Path, h.cfg.Dataset.Columns(), h.cfg.Dataset.ChunkSize, likes, dislikes)
	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("Ranking failed: %v", err)
		return
	}

	log.Debugf("Took [ %v ] for rank query", elapsed)

	if len(ranked) == 0 {
		log.Warn("No recipes survived the query")
		return
	}

	log.Printf("Top %d recipes:", len(ranked))
	for i, r := range ranked {
		name := r.Name
		if name == "" {
			name = r.ID
		}
		clName := fmt.Sprintf("\033[38;5;75m%s\033[0m", name)
		log.Printf("%2d. %-40s (score: %4d, match: %5.1f%%, reviews: %s)",
			i+1, clName, r.Score, r.Accuracy, utils.FormatWithCommas(r.Reviews))
	}
}

// splitRankQuery turns "a, b ; c, d" into liked and disliked term lists.
func splitRankQuery(query string) (likes, dislikes []string) {
	side := strings.SplitN(query, ";", 2)
	likes = splitTerms(side[0])
	if len(side) > 1 {
		dislikes = splitTerms(side[1])
	}
	return likes, dislikes
}

func splitTerms(s string) []string {
	var terms []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
