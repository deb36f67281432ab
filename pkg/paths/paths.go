// Package paths provides centralized path resolution for tabsort's config,
// state and runtime files.
//
// Layout (XDG-style):
//
//	Config:  ~/.config/tabsort/config.yaml  (override: TABSORT_CONFIG_DIR)
//	State:   ~/.local/state/tabsort/        (override: TABSORT_STATE_DIR)
//	Runtime: /tmp/tabsortd.*                (unchanged)
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	configDirOnce   sync.Once
	configDirCached string

	stateDirOnce   sync.Once
	stateDirCached string
)

// ConfigDir resolves the config directory.
// Priority: TABSORT_CONFIG_DIR env > ~/.config/tabsort/
func ConfigDir() string {
	configDirOnce.Do(func() {
		if env := os.Getenv("TABSORT_CONFIG_DIR"); env != "" {
			configDirCached = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				configDirCached = "."
			} else {
				configDirCached = filepath.Join(home, ".config", "tabsort")
			}
		}
	})
	return configDirCached
}

// StateDir resolves the state directory.
// Priority: TABSORT_STATE_DIR env > ~/.local/state/tabsort/
func StateDir() string {
	stateDirOnce.Do(func() {
		if env := os.Getenv("TABSORT_STATE_DIR"); env != "" {
			stateDirCached = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				stateDirCached = "."
			} else {
				stateDirCached = filepath.Join(home, ".local", "state", "tabsort")
			}
		}
	})
	return stateDirCached
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StatePath returns the full path to a state file.
func StatePath(filename string) string {
	return filepath.Join(StateDir(), filename)
}

// SocketPath returns the daemon control socket path.
func SocketPath() string {
	return "/tmp/tabsortd.sock"
}

// PidPath returns the daemon pidfile path.
func PidPath() string {
	return "/tmp/tabsortd.pid"
}

// EnsureConfigDir creates the config directory if it doesn't exist and returns its path.
func EnsureConfigDir() (string, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureStateDir creates the state directory if it doesn't exist and returns its path.
func EnsureStateDir() (string, error) {
	dir := StateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return dir, nil
}

// ResetForTest clears cached values so tests can re-run resolution logic.
// Only use in tests.
func ResetForTest() {
	configDirOnce = sync.Once{}
	configDirCached = ""
	stateDirOnce = sync.Once{}
	stateDirCached = ""
}
