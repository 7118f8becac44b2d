// Package paths centralizes the filesystem layout used by chisel:
// the per-user scratch directory and the names of the transient
// artifacts written into it during history rewrites.
//
// Artifact names are pure functions of the target commit's short hash
// so the mapping can be tested without touching the filesystem, and so
// concurrent edits of different commits never collide on a filename.
package paths

import (
	"os"
	"path/filepath"
)

// ScratchDirName is the per-user scratch directory, relative to $HOME.
const ScratchDirName = ".chisel"

// LogsDirName is the log directory inside the scratch directory.
const LogsDirName = "logs"

// SettingsFileName is the settings file inside the scratch directory.
const SettingsFileName = "settings.json"

// DefaultScratchDir returns the default per-user scratch directory
// (~/.chisel). Falls back to the system temp directory when the home
// directory cannot be determined.
func DefaultScratchDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ScratchDirName)
	}
	return filepath.Join(home, ScratchDirName)
}

// SettingsFile returns the path to the user settings file.
func SettingsFile() string {
	return filepath.Join(DefaultScratchDir(), SettingsFileName)
}

// LogsDir returns the path to the log directory.
func LogsDir() string {
	return filepath.Join(DefaultScratchDir(), LogsDirName)
}

// MessageFileName returns the name of the transient file holding the
// replacement commit message for the given short hash.
func MessageFileName(shortHash string) string {
	return "commit_message_" + shortHash + ".tmp"
}

// FilterScriptName returns the name of the transient msg-filter hook
// script for the given short hash.
func FilterScriptName(shortHash string) string {
	return "msg_filter_" + shortHash
}

// RebaseTodoName returns the name of the transient rebase pick list
// for the given short hash.
func RebaseTodoName(shortHash string) string {
	return "rebase_todo_" + shortHash
}
