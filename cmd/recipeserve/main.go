// Copyright 2026 The RecipeServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the recipe discovery server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

RecipeServe indexes the ingredient vocabulary of a recipe dataset into a
trie and answers two kinds of queries: prefix autocomplete over ingredient
tokens, and ranked recipe search driven by liked and disliked ingredients.
It can operate as a MessagePack IPC server for integration with frontends,
or as a CLI application for testing and debugging.

The index is built once from the recipe CSV and persisted as a binary
snapshot. On later runs the snapshot is reused as long as it is not older
than the source file, so startup cost is paid only when the dataset
actually changes.

# Usage

Start the server with default settings:

	recipeserve

Use a custom dataset and enable debug mode:

	recipeserve -data /path/to/recipes.csv -d

Run in CLI mode for interactive testing:

	recipeserve -c -limit 10 -topk 3

The dataset is a CSV file with a header row carrying a recipe id column
and a serialized ingredient column (";"-separated by default). Display
name and review count columns are optional and only used for ranked
output.

# Configuration

Runtime configuration is managed through a TOML file covering the dataset
schema, index snapshot, scoring weights and server limits:

	[dataset]
	path = "data/recipes.csv"
	separator = ";"
	chunk_size = 50000

	[rank]
	match_weight = 10
	top_k = 5

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	enable_filter = true

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Requests are
processed synchronously with microsecond timing information included in
responses.

Send a completion request:

	{"id": "req1", "cmd": "complete", "p": "oni", "l": 20}

Receive ingredient tokens ranked by recipe matches:

	{"id": "req1", "s": [{"t": "onion", "m": 1542}, {"t": "onion powder", "m": 420}], "c": 2, "t": 145}

Rank requests carry liked and disliked ingredient lists:

	{"id": "rank1", "cmd": "rank", "likes": ["beef", "potato"], "dislikes": ["onion"], "k": 5}

and yield scored recipes, best first. A recipe containing any disliked
ingredient is vetoed outright regardless of how many likes it matches.

# Server Mode

The default mode starts a MessagePack IPC server that processes requests
from stdin and writes responses to stdout. This design enables
integration with editors and UI frontends through process communication.

	srv := server.NewServer(searcher, scorer, appConfig, configPath)
	err := srv.Start()

The server handles request parsing, validation and response formatting,
and never exits on a malformed request.

# CLI Mode

CLI mode provides an interactive interface for testing and debugging.
Plain input lines are treated as ingredient prefixes; lines starting with
"/" run a ranked recipe query, with liked terms before ";" and disliked
terms after:

	> oni
	> /beef, potato ; onion

	inputHandler := cli.NewInputHandler(searcher, scorer, cfg, limit, topK, noFilter)
	err := inputHandler.Start()

This mode is primarily intended for development and testing new features
before deploying to server mode.

# Index Engine

The core index is built by the index package, which streams the dataset
in chunks, inserts each ingredient token into a trie keyed per character
and records the recipe ids at terminal nodes.

	cache := index.NewCache(sourcePath, artifactPath, cols, ";", chunkSize)
	ix, err := cache.LoadOrBuild()

Queries run through the suggest package, which walks the trie with an
explicit work stack and keeps the hottest tokens in a patricia-backed
cache for repeat lookups.

# Command Line Flags

The following flags control application behavior:

	-data string
	    Path to the recipe CSV source (default from config)
	-artifact string
	    Path of the index snapshot (default inside the user config dir)
	-config string
	    Path to a custom TOML config file
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return (default from config)
	-prmin int
	    Minimum prefix length for suggestions
	-prmax int
	    Maximum prefix length for suggestions
	-no-filter
	    Disable input filtering for debugging
	-topk int
	    Number of ranked recipes to return
	-weight int
	    Score contribution of one matched liked ingredient

The application automatically resolves data and config paths relative to
the executable location, supporting both development and production
deployments.

# Mem

Dataset reads are chunked so peak memory stays independent of recipe
count; ranked queries keep only the current top-k across chunks. The
snapshot loader materializes the full trie, which is the one structure
sized by vocabulary rather than dataset size.

Input filtering removes junk prefixes (symbols, repeated characters,
bare numbers) by default to improve suggestion relevance, though this can
be disabled for debugging purposes.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/recipeserve/recipeserve/internal/cli"
	"github.com/recipeserve/recipeserve/internal/utils"
	"github.com/recipeserve/recipeserve/pkg/config"
	"github.com/recipeserve/recipeserve/pkg/index"
	"github.com/recipeserve/recipeserve/pkg/rank"
	"github.com/recipeserve/recipeserve/pkg/server"
	"github.com/recipeserve/recipeserve/pkg/suggest"
)

const (
	Version = "0.3.0-beta"
	AppName = "recipeserve"
	gh      = "https://github.com/recipeserve/recipeserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	// custom Flags
	showVersion := flag.Bool("version", false, "Show current version")
	dataPath := flag.String("data", "", "Path to the recipe CSV source")
	artifactPath := flag.String("artifact", "", "Path of the index snapshot file")
	configPath := flag.String("config", "", "Path to a custom config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return")
	minPrefix := flag.Int("prmin", defaultConfig.Server.MinPrefix, "Minimum prefix length for suggestions (1 < n <= prmax)")
	maxPrefix := flag.Int("prmax", defaultConfig.Server.MaxPrefix, "Maximum prefix length for suggestions")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering (DBG only) - queries raw input (numbers, symbols, etc)")
	topK := flag.Int("topk", defaultConfig.Rank.TopK, "Number of ranked recipes to return")
	weight := flag.Int("weight", defaultConfig.Rank.MatchWeight, "Score contribution of one matched liked ingredient")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["version"] = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ RecipeServe ] Serves really fast recipe discovery!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	// Initialize path resolver for robust path handling
	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activeConfigPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", activeConfigPath)

	// Flags win over the config file
	if *dataPath != "" {
		appConfig.Dataset.Path = *dataPath
	}
	if *artifactPath != "" {
		appConfig.Index.Artifact = *artifactPath
	}
	appConfig.Server.MinPrefix = *minPrefix
	appConfig.Server.MaxPrefix = *maxPrefix
	appConfig.Rank.TopK = *topK
	appConfig.Rank.MatchWeight = *weight

	// Pathfinder for the dataset and snapshot
	resolvedData, err := pathResolver.GetDataFile(appConfig.Dataset.Path)
	if err != nil {
		log.Fatalf("Failed to resolve recipe source: (%v)", err)
	}
	appConfig.Dataset.Path = resolvedData
	resolvedArtifact := pathResolver.GetArtifactPath(appConfig.Index.Artifact)

	log.Debugf("Using recipe source at: %s", resolvedData)
	log.Debugf("Using index snapshot at: %s", resolvedArtifact)

	cache := index.NewCache(resolvedData, resolvedArtifact,
		appConfig.Dataset.Columns(), appConfig.Dataset.Separator, appConfig.Dataset.ChunkSize)
	ix, err := cache.LoadOrBuild()
	if err != nil {
		log.Fatalf("Failed to init index: %v", err)
	}
	log.Debugf("Index ready: tokens=[%d], recipes=[%d]", ix.Tokens, ix.Docs)

	searcher := suggest.NewSearcherWithCache(ix, appConfig.Index.HotCacheSize)
	scorer := rank.NewScorer(appConfig.Dataset.Separator, appConfig.Rank.MatchWeight)

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minPrefix", appConfig.Server.MinPrefix,
			"maxPrefix", appConfig.Server.MaxPrefix,
			"limit", *limit,
			"topK", appConfig.Rank.TopK,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(searcher, scorer, appConfig, *limit, appConfig.Rank.TopK, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(searcher, scorer, appConfig, activeConfigPath)

	showStartupInfo(resolvedData, activeConfigPath, ix)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataPath, configPath string, ix *index.Index) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("=============")
	println(" RecipeServe ")
	println("=============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("recipe source: ( %s )", dataPath)
	log.Infof("config file: ( %s )", config.GetActiveConfigPath(configPath))
	log.Infof("indexed tokens: [ %s ]", utils.FormatWithCommas(ix.Tokens))
	log.Info("status: ready")
	println("=============")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
