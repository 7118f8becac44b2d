// Package scratch manages the transient artifacts a history rewrite
// needs on disk: the replacement message file and the msg-filter hook
// script, plus the pick list used by replay deletes.
//
// The user's message is written to a file verbatim and the hook script
// *reads* that file instead of receiving the message as an argument, so
// no user content is ever interpolated into a command line. Shell
// metacharacters in a commit message are therefore inert by construction.
//
// Every acquisition returns a release function that removes the files on
// all exit paths. Removal failures are logged, never propagated: cleanup
// must not mask the primary operation's result.
package scratch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/logging"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/paths"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/validation"
)

// Dir is a handle on the per-user scratch directory.
// The zero value is not usable; construct with New.
type Dir struct {
	base string
}

// New returns a Dir rooted at base, creating the directory if absent.
// Failure to create it is a hard error surfaced to the caller.
func New(base string) (*Dir, error) {
	if err := os.MkdirAll(base, 0o700); err != nil {
		return nil, fmt.Errorf("creating scratch directory %s: %w", base, err)
	}
	return &Dir{base: base}, nil
}

// Base returns the scratch directory path.
func (d *Dir) Base() string {
	return d.base
}

// MessageArtifacts holds the two files a history rewrite needs.
// Both are owned by the strategy invocation that created them and live
// only for the duration of a single execute call.
type MessageArtifacts struct {
	// MessageFile holds the replacement commit message verbatim.
	MessageFile string

	// FilterScript is the executable msg-filter hook.
	FilterScript string
}

// WriteMessageArtifacts writes the message file and the msg-filter hook
// for rewriting the commit identified by fullHash. The returned release
// function removes both files and must be called on every exit path.
//
// The hook compares $GIT_COMMIT (exported by the rewrite for each commit
// it replays) against the target's full hash: on a match it emits the
// message file's contents byte-for-byte, otherwise it passes its input
// through unchanged, preserving every other commit's message exactly.
func (d *Dir) WriteMessageArtifacts(ctx context.Context, fullHash, shortHash, fullMessage string) (*MessageArtifacts, func(), error) {
	if err := validation.ValidateHash(fullHash); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateHash(shortHash); err != nil {
		return nil, nil, err
	}

	messageFile := filepath.Join(d.base, paths.MessageFileName(shortHash))
	if err := os.WriteFile(messageFile, []byte(fullMessage), 0o600); err != nil {
		return nil, nil, fmt.Errorf("writing message file: %w", err)
	}

	script := filterScript(fullHash, messageFile)
	scriptFile := filepath.Join(d.base, paths.FilterScriptName(shortHash))
	if err := os.WriteFile(scriptFile, []byte(script), 0o700); err != nil { //nolint:gosec // hook must be executable, dir is 0700
		d.remove(ctx, messageFile)
		return nil, nil, fmt.Errorf("writing filter script: %w", err)
	}

	logging.Debug(ctx, "scratch artifacts created",
		slog.String("message_file", messageFile),
		slog.String("filter_script", scriptFile),
	)

	artifacts := &MessageArtifacts{MessageFile: messageFile, FilterScript: scriptFile}
	release := func() {
		d.remove(ctx, messageFile)
		d.remove(ctx, scriptFile)
	}
	return artifacts, release, nil
}

// WriteRebaseTodo writes a rebase pick list for deleting the commit
// identified by shortHash. The returned release function removes it.
func (d *Dir) WriteRebaseTodo(ctx context.Context, shortHash string, lines []string) (string, func(), error) {
	if err := validation.ValidateHash(shortHash); err != nil {
		return "", nil, err
	}

	todoFile := filepath.Join(d.base, paths.RebaseTodoName(shortHash))
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(todoFile, []byte(content), 0o600); err != nil {
		return "", nil, fmt.Errorf("writing rebase pick list: %w", err)
	}

	release := func() { d.remove(ctx, todoFile) }
	return todoFile, release, nil
}

// remove deletes a file, logging (never returning) any failure.
func (d *Dir) remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn(ctx, "failed to remove scratch artifact",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}
	logging.Debug(ctx, "scratch artifact removed", slog.String("path", path))
}

// filterScript renders the msg-filter hook. Only the validated hex hash
// and the quoted message-file path are embedded; the user's message never
// appears in the script.
func filterScript(fullHash, messageFile string) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# Emits the replacement message for one commit during a\n")
	b.WriteString("# history rewrite and passes every other message through.\n")
	b.WriteString(`if [ "$GIT_COMMIT" = "` + fullHash + `" ]; then` + "\n")
	b.WriteString("  cat " + ShellQuote(messageFile) + "\n")
	b.WriteString("else\n")
	b.WriteString("  cat\n")
	b.WriteString("fi\n")
	return b.String()
}

// ShellQuote single-quotes a path for safe embedding in text that a
// shell will evaluate (the filter hook, --msg-filter, sequence editors).
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
