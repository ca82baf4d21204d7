/*
Package config manages TOML config for RecipeServe services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/recipeserve/recipeserve/internal/utils"
	"github.com/recipeserve/recipeserve/pkg/dataset"
)

// Config holds the entire config structure
type Config struct {
	Dataset DatasetConfig `toml:"dataset"`
	Index   IndexConfig   `toml:"index"`
	Rank    RankConfig    `toml:"rank"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
}

// DatasetConfig describes the recipe CSV source.
type DatasetConfig struct {
	Path              string `toml:"path"`
	IDColumn          string `toml:"id_column"`
	NameColumn        string `toml:"name_column"`
	IngredientsColumn string `toml:"ingredients_column"`
	ReviewsColumn     string `toml:"reviews_column"`
	Separator         string `toml:"separator"`
	ChunkSize         int    `toml:"chunk_size"`
}

// IndexConfig holds trie snapshot options.
type IndexConfig struct {
	Artifact     string `toml:"artifact"`
	HotCacheSize int    `toml:"hot_cache_size"`
}

// RankConfig holds scoring options.
type RankConfig struct {
	MatchWeight int `toml:"match_weight"`
	TopK        int `toml:"top_k"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int  `toml:"max_limit"`
	MinPrefix    int  `toml:"min_prefix"`
	MaxPrefix    int  `toml:"max_prefix"`
	EnableFilter bool `toml:"enable_filter"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultNoFilter bool `toml:"default_no_filter"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/recipeserve
// 2. ~/Library/Application Support/recipeserve (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "recipeserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "recipeserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/recipeserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Path:              "data/recipes.csv",
			IDColumn:          "id",
			NameColumn:        "name_clean",
			IngredientsColumn: "ingredients_serialized",
			ReviewsColumn:     "review_count",
			Separator:         ";",
			ChunkSize:         50000,
		},
		Index: IndexConfig{
			Artifact:     "",
			HotCacheSize: 20000,
		},
		Rank: RankConfig{
			MatchWeight: 10,
			TopK:        5,
		},
		Server: ServerConfig{
			MaxLimit:     64,
			MinPrefix:    1,
			MaxPrefix:    60,
			EnableFilter: true,
		},
		CLI: CliConfig{
			DefaultLimit:    24,
			DefaultNoFilter: false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages whatever valid sections a broken TOML file has
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if datasetSection, ok := utils.ExtractSection(tempConfig, "dataset"); ok {
		extractDatasetConfig(datasetSection, &config.Dataset)
	}
	if indexSection, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(indexSection, &config.Index)
	}
	if rankSection, ok := utils.ExtractSection(tempConfig, "rank"); ok {
		extractRankConfig(rankSection, &config.Rank)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	return config, nil
}

// extractDatasetConfig extracts dataset configuration from a map
func extractDatasetConfig(data map[string]any, dataset *DatasetConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		dataset.Path = val
	}
	if val, ok := utils.ExtractString(data, "id_column"); ok {
		dataset.IDColumn = val
	}
	if val, ok := utils.ExtractString(data, "name_column"); ok {
		dataset.NameColumn = val
	}
	if val, ok := utils.ExtractString(data, "ingredients_column"); ok {
		dataset.IngredientsColumn = val
	}
	if val, ok := utils.ExtractString(data, "reviews_column"); ok {
		dataset.ReviewsColumn = val
	}
	if val, ok := utils.ExtractString(data, "separator"); ok {
		dataset.Separator = val
	}
	if val, ok := utils.ExtractInt64(data, "chunk_size"); ok {
		dataset.ChunkSize = val
	}
}

// extractIndexConfig extracts index configuration from a map
func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractString(data, "artifact"); ok {
		index.Artifact = val
	}
	if val, ok := utils.ExtractInt64(data, "hot_cache_size"); ok {
		index.HotCacheSize = val
	}
}

// extractRankConfig extracts rank configuration from a map
func extractRankConfig(data map[string]any, rank *RankConfig) {
	if val, ok := utils.ExtractInt64(data, "match_weight"); ok {
		rank.MatchWeight = val
	}
	if val, ok := utils.ExtractInt64(data, "top_k"); ok {
		rank.TopK = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractBool(data, "default_no_filter"); ok {
		cli.DefaultNoFilter = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server tunables and saves to file
func (c *Config) Update(configPath string, maxLimit, minPrefix, maxPrefix *int, enableFilter *bool) error {
	server := &c.Server
	if maxLimit != nil {
		server.MaxLimit = *maxLimit
	}
	if minPrefix != nil {
		server.MinPrefix = *minPrefix
	}
	if maxPrefix != nil {
		server.MaxPrefix = *maxPrefix
	}
	if enableFilter != nil {
		server.EnableFilter = *enableFilter
	}
	return SaveConfig(c, configPath)
}

// Columns returns the dataset column mapping in the form the reader wants.
func (d DatasetConfig) Columns() dataset.Columns {
	return dataset.Columns{
		ID:          d.IDColumn,
		Name:        d.NameColumn,
		Ingredients: d.IngredientsColumn,
		Reviews:     d.ReviewsColumn,
	}
}
