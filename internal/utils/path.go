package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver provides robust path resolution for the recipeserve binary:
// the recipe CSV, the index artifact and the TOML config can all be given
// as relative paths and still resolve in both dev and installed layouts.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a new path resolver anchored at the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}
	execDir := filepath.Dir(execPath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}
	configDir := getConfigDir(homeDir)

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  execDir,
		homeDir:        homeDir,
		configDir:      configDir,
	}
	log.Debugf("PathResolver initialized: exec=%s, execDir=%s, configDir=%s",
		execPath, execDir, configDir)
	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "recipeserve")
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "recipeserve")
		}
		return filepath.Join(homeDir, ".config", "recipeserve")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "recipeserve")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "recipeserve")
	default:
		return filepath.Join(homeDir, ".recipeserve")
	}
}

// GetDataFile resolves the recipe source path. Tries, in order: the path
// as given, relative to the working directory, relative to the executable
// and the executable's data/ subdirectory.
func (pr *PathResolver) GetDataFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no recipe source path given")
	}
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		if cwd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(cwd, path))
		}
		candidates = append(candidates,
			filepath.Join(pr.executableDir, path),
			filepath.Join(pr.executableDir, "data", path),
		)
	}
	for _, candidate := range candidates {
		if FileExists(candidate) {
			return GetAbsolutePath(candidate), nil
		}
	}
	return "", fmt.Errorf("recipe source %s not found in any known location", path)
}

// GetArtifactPath resolves where the index snapshot lives. An empty path
// defaults to cache/trie.bin inside the user config directory; the
// directory is not created here, the snapshot writer does that.
func (pr *PathResolver) GetArtifactPath(path string) string {
	if path == "" {
		return filepath.Join(pr.configDir, "cache", "trie.bin")
	}
	return GetAbsolutePath(path)
}
