// Package gitexec runs version-control subprocesses for chisel.
//
// Commands are always spawned from an argument vector, never through a
// shell: Command.Args is a []string by construction, so there is no code
// path that could concatenate user content into a shell string. This is
// the primary defense against command injection and is a contract of the
// package, not an implementation detail.
package gitexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/logging"
)

// ErrToolUnavailable is returned when the binary cannot be launched at all
// (not installed, not executable). Callers use this to distinguish
// "operation failed" from "tool unavailable".
var ErrToolUnavailable = errors.New("version control tool unavailable")

// TimeoutError is returned when a subprocess exceeds its allotted time.
// The child process is killed before this is returned.
type TimeoutError struct {
	Args     []string
	Allotted time.Duration
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("git %s timed out after %s", strings.Join(e.Args, " "), e.Elapsed.Round(time.Millisecond))
}

// Result is the outcome of a single subprocess call. It is transient:
// produced per call and not retained by this package.
type Result struct {
	// Success is true when the process exited with status zero.
	Success bool

	// Output is trimmed stdout on success, or the tool's raw diagnostic
	// text (stderr, falling back to stdout) on a nonzero exit.
	Output string
}

// Command describes a single subprocess invocation.
type Command struct {
	// Args are the arguments passed to the binary (excluding the binary
	// name itself), e.g. {"rev-parse", "HEAD"}.
	Args []string

	// Timeout bounds the call. The child is killed when it elapses.
	// Zero means no timeout beyond the caller's context.
	Timeout time.Duration

	// Stdin, when non-empty, is fed to the child's standard input.
	Stdin string

	// Env entries are appended to the inherited environment.
	Env []string
}

// Runner executes subprocesses of a single binary.
// It is stateless and safe to share across calls.
type Runner struct {
	binary string
	dir    string
}

// New returns a Runner for the given binary name.
func New(binary string) *Runner {
	return &Runner{binary: binary}
}

// NewInDir returns a Runner that executes in the given working directory.
// Used by tests to operate on throwaway repositories.
func NewInDir(binary, dir string) *Runner {
	return &Runner{binary: binary, dir: dir}
}

// Run executes the command and blocks until it completes or times out.
//
// Error semantics follow the engine's taxonomy:
//   - launch failure wraps ErrToolUnavailable
//   - exceeding c.Timeout returns a *TimeoutError (the child is killed
//     first); an expired caller deadline returns the context error instead
//   - a nonzero exit is NOT an error: it yields Result{Success: false}
//     with the tool's diagnostics preserved verbatim in Output
func (r *Runner) Run(ctx context.Context, c Command) (Result, error) {
	start := time.Now()

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.binary, c.Args...) //nolint:gosec // args are argv entries, never shell text
	cmd.Dir = r.dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}
	// Bound Wait after the kill signal so a stuck child cannot leak.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug(ctx, "running command",
		slog.String("binary", r.binary),
		slog.String("args", strings.Join(c.Args, " ")),
	)

	err := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		if ctx.Err() == context.DeadlineExceeded {
			// The caller's own deadline expired, not this command's
			// budget. Report it like a cancellation.
			return Result{}, ctx.Err()
		}
		logging.Warn(ctx, "command timed out",
			slog.String("args", strings.Join(c.Args, " ")),
			slog.Duration("allotted", c.Timeout),
		)
		return Result{}, &TimeoutError{Args: c.Args, Allotted: c.Timeout, Elapsed: elapsed}
	}
	if errors.Is(runCtx.Err(), context.Canceled) {
		return Result{}, runCtx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			diag := strings.TrimSpace(stderr.String())
			if diag == "" {
				diag = strings.TrimSpace(stdout.String())
			}
			logging.Debug(ctx, "command exited nonzero",
				slog.String("args", strings.Join(c.Args, " ")),
				slog.Int("exit_code", exitErr.ExitCode()),
			)
			return Result{Success: false, Output: diag}, nil
		}
		// Launch failure: binary missing, permission denied, etc.
		return Result{}, fmt.Errorf("%w: %s: %v", ErrToolUnavailable, r.binary, err)
	}

	return Result{Success: true, Output: strings.TrimSpace(stdout.String())}, nil
}

// RunSimple is a convenience wrapper for plain argv calls.
func (r *Runner) RunSimple(ctx context.Context, timeout time.Duration, args ...string) (Result, error) {
	return r.Run(ctx, Command{Args: args, Timeout: timeout})
}
