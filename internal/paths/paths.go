// Package paths provides a single source of truth for roam file paths.
// All path helpers honor environment variable overrides for isolated testing.
//
// Path resolution precedence:
//  1. Specific env vars (ROAM_CONFIG, ROAM_LOG_PATH) take highest priority
//  2. ROAM_DIR env var sets the base directory (derives config/log/history)
//  3. Default behavior (~/.roam, ~/.config/roam) when no env vars are set
package paths

import (
	"os"
	"path/filepath"
)

// Environment variable names for path overrides.
const (
	// EnvRoamDir is the base directory override (e.g., /tmp/roam-test).
	EnvRoamDir = "ROAM_DIR"

	// EnvConfigPath overrides the config file path directly.
	EnvConfigPath = "ROAM_CONFIG"

	// EnvLogPath overrides the log file path directly.
	EnvLogPath = "ROAM_LOG_PATH"
)

// BaseDir returns the roam base directory (~/.roam by default).
// Honors ROAM_DIR.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvRoamDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".roam"), nil
}

// ConfigDir returns the roam config directory (~/.config/roam by default).
// When ROAM_DIR is set, returns ROAM_DIR/config instead.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvRoamDir); dir != "" {
		return filepath.Join(dir, "config"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "roam"), nil
}

// ConfigPath returns the path to the roam config file.
// Precedence: ROAM_CONFIG > ConfigDir()/config.toml
func ConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the log file path.
// Precedence: ROAM_LOG_PATH > BaseDir()/roam.log > /tmp/roam.log
func LogPath() string {
	if path := os.Getenv(EnvLogPath); path != "" {
		return path
	}
	base, err := BaseDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "roam.log")
	}
	return filepath.Join(base, "roam.log")
}

// InputHistoryPath returns where the chat REPL keeps its line-editing history.
// This is readline recall only; conversations are never stored locally.
func InputHistoryPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "input_history"), nil
}
