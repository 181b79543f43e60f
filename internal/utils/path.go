package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

const appName = "mentionserve"

// DictionaryPatterns are the file globs recognised in a data directory.
var DictionaryPatterns = []string{"*.txt", "*.bin"}

// ConfigDir returns the platform config directory for mentionserve.
func ConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, appName)
		}
		return filepath.Join(homeDir, ".config", appName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	default:
		return filepath.Join(homeDir, ".config", appName)
	}
}

// ResolveDataDir finds the dictionary directory for the user supplied path.
// It tries, in order:
// 1. the path itself (absolute, or relative to the working directory)
// 2. relative to the executable directory
// 3. data/ under the config directory
func ResolveDataDir(userPath string) (string, error) {
	candidates := []string{userPath}
	if !filepath.IsAbs(userPath) {
		if execDir, err := GetExecutableDir(); err == nil {
			candidates = append(candidates, filepath.Join(execDir, userPath))
		}
	}
	candidates = append(candidates, filepath.Join(ConfigDir(), "data"))

	for _, path := range candidates {
		if IsValidDataDir(path) {
			log.Debugf("Found valid data directory: %s", path)
			return path, nil
		}
		log.Debugf("Data directory candidate not valid: %s", path)
	}
	return "", fmt.Errorf("no dictionary files found for %q: %w", userPath, os.ErrNotExist)
}

// IsValidDataDir checks that path is a directory with at least one dictionary file.
func IsValidDataDir(path string) bool {
	return len(ListDictionaryFiles(path)) > 0
}

// ListDictionaryFiles returns the dictionary files directly under dir.
func ListDictionaryFiles(dir string) []string {
	if stat, err := os.Stat(dir); err != nil || !stat.IsDir() {
		return nil
	}

	var files []string
	for _, pattern := range DictionaryPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	return files
}
