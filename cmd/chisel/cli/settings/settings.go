// Package settings provides configuration loading for chisel.
// This package is separate from cli so the strategy package can import it
// without creating an import cycle (cli imports strategy).
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/paths"
)

// Default timeouts for git subprocess calls. Rewrites touch every
// descendant commit, so they get a much longer allowance than plain
// plumbing commands.
const (
	DefaultCommandTimeout = 60 * time.Second
	DefaultRewriteTimeout = 300 * time.Second
	DefaultRebaseTimeout  = 120 * time.Second
)

// Settings represents the ~/.chisel/settings.json configuration.
type Settings struct {
	// ScratchDir overrides the per-user scratch directory used for
	// transient rewrite artifacts. Defaults to ~/.chisel.
	ScratchDir string `json:"scratch_dir,omitempty"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	// Can be overridden by the CHISEL_LOG_LEVEL environment variable.
	// Defaults to "info".
	LogLevel string `json:"log_level,omitempty"`

	// CommandTimeoutSeconds bounds ordinary git subprocess calls.
	CommandTimeoutSeconds int `json:"command_timeout_seconds,omitempty"`

	// RewriteTimeoutSeconds bounds history rewrites (filter-branch).
	RewriteTimeoutSeconds int `json:"rewrite_timeout_seconds,omitempty"`

	// RebaseTimeoutSeconds bounds replay deletes (interactive rebase).
	RebaseTimeoutSeconds int `json:"rebase_timeout_seconds,omitempty"`
}

// Default returns settings with every field at its default value.
func Default() *Settings {
	s := &Settings{}
	applyDefaults(s)
	return s
}

// Load loads settings from ~/.chisel/settings.json.
// Returns default settings if the file does not exist.
func Load() (*Settings, error) {
	return loadFromFile(paths.SettingsFile())
}

// loadFromFile loads settings from a specific file path.
// Returns default settings if the file doesn't exist.
func loadFromFile(filePath string) (*Settings, error) {
	settings := &Settings{}

	data, err := os.ReadFile(filePath) //nolint:gosec // path is from caller
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(settings)
			return settings, nil
		}
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", filePath, err)
	}

	applyDefaults(settings)
	return settings, nil
}

// applyDefaults fills in zero-valued fields.
func applyDefaults(s *Settings) {
	if s.ScratchDir == "" {
		s.ScratchDir = paths.DefaultScratchDir()
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.CommandTimeoutSeconds <= 0 {
		s.CommandTimeoutSeconds = int(DefaultCommandTimeout / time.Second)
	}
	if s.RewriteTimeoutSeconds <= 0 {
		s.RewriteTimeoutSeconds = int(DefaultRewriteTimeout / time.Second)
	}
	if s.RebaseTimeoutSeconds <= 0 {
		s.RebaseTimeoutSeconds = int(DefaultRebaseTimeout / time.Second)
	}
}

// CommandTimeout returns the ordinary command timeout as a duration.
func (s *Settings) CommandTimeout() time.Duration {
	return time.Duration(s.CommandTimeoutSeconds) * time.Second
}

// RewriteTimeout returns the history-rewrite timeout as a duration.
func (s *Settings) RewriteTimeout() time.Duration {
	return time.Duration(s.RewriteTimeoutSeconds) * time.Second
}

// RebaseTimeout returns the replay-delete timeout as a duration.
func (s *Settings) RebaseTimeout() time.Duration {
	return time.Duration(s.RebaseTimeoutSeconds) * time.Second
}
