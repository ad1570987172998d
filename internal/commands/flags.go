package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/violations/internal/core/config"
)

// Flags holds the global options shared by every command.
type Flags struct {
	LogLevel     string
	LogFile      string
	ConfigPath   string
	DataDir      string
	Driver       string
	ProfilerPort int

	// Config is set by the root Before hook once flags and file are merged.
	Config *config.Config
}

// DefaultConfigPath is $XDG_CONFIG_HOME/violations/config.yaml, falling back
// to ~/.config when the variable is unset.
func DefaultConfigPath() string {
	return filepath.Join(xdgHome("XDG_CONFIG_HOME", ".config"), appDir, "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/violations, falling back to ~/.local/share.
func DefaultDataDir() string {
	return filepath.Join(xdgHome("XDG_DATA_HOME", ".local", "share"), appDir)
}

const appDir = "violations"

func xdgHome(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(append([]string{home}, fallback...)...)
}
