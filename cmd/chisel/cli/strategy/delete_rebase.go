package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitexec"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitrepo"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/logging"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/scratch"
)

// RebaseDeleteStrategy removes a non-tip commit by replaying the branch
// without it. The pick list is computed here and handed to the replay
// through a scratch file, so no interactive editor ever opens.
//
// If the replay stops on a merge conflict the repository is left in the
// conflicted state and a *ConflictError is returned; the caller decides
// whether to resolve and continue or abort. Every other failure aborts
// the replay before returning, so the branch is never left half-moved.
type RebaseDeleteStrategy struct{}

// Name implements DeleteStrategy.
func (RebaseDeleteStrategy) Name() string { return "rebase-delete" }

// Description implements DeleteStrategy.
func (RebaseDeleteStrategy) Description() string {
	return "replay the branch without the target commit (descendant hashes change)"
}

// CanHandle accepts every commit; this is the fallback delete strategy.
func (RebaseDeleteStrategy) CanHandle(*DeleteRequest) bool { return true }

// Execute implements DeleteStrategy.
func (s RebaseDeleteStrategy) Execute(ctx context.Context, req *DeleteRequest) error {
	ctx = logging.WithComponent(ctx, "strategy."+s.Name())
	ctx = logging.WithCommit(ctx, req.Target.ShortHash)

	picks, err := s.pickList(ctx, req)
	if err != nil {
		return err
	}

	// Deleting the only commit leaves no history to replay: drop the
	// branch ref instead. The working tree is left as it stands.
	if len(picks) == 0 {
		logging.Info(ctx, "deleting sole commit by dropping the branch ref")
		res, err := req.Repo.Runner().RunSimple(ctx, req.Settings.CommandTimeout(), "update-ref", "-d", "HEAD")
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("deleting branch ref failed: %s", res.Output)
		}
		return nil
	}

	todoPath, release, err := req.Scratch.WriteRebaseTodo(ctx, req.Target.ShortHash, picks)
	if err != nil {
		return fmt.Errorf("preparing pick list: %w", err)
	}
	defer release()

	logging.Info(ctx, "replaying branch without target", "picks", len(picks))

	res, err := req.Repo.Runner().Run(ctx, gitexec.Command{
		Args:    []string{"rebase", "-i", "--root"},
		Timeout: req.Settings.RebaseTimeout(),
		Env: []string{
			// The sequence editor overwrites git's generated todo with
			// our pick list; the quoted path survives the shell eval.
			"GIT_SEQUENCE_EDITOR=cp " + scratch.ShellQuote(todoPath),
			"GIT_EDITOR=true",
		},
	})
	if err != nil {
		var timeout *gitexec.TimeoutError
		if errors.As(err, &timeout) {
			// A stalled replay is aborted outright; there is nothing
			// for the user to resolve.
			abortReplay(ctx, req.Repo, req.Settings.CommandTimeout())
		}
		return err
	}
	if !res.Success {
		if isReplayConflict(res.Output) {
			return s.conflictError(ctx, req.Repo, res.Output)
		}
		abortReplay(ctx, req.Repo, req.Settings.CommandTimeout())
		return fmt.Errorf("replay failed: %s", res.Output)
	}
	return nil
}

// pickList returns "pick <hash>" lines for every commit reachable from
// HEAD except the target, oldest first.
func (RebaseDeleteStrategy) pickList(ctx context.Context, req *DeleteRequest) ([]string, error) {
	res, err := req.Repo.Runner().RunSimple(ctx, req.Settings.CommandTimeout(), "rev-list", "--reverse", "HEAD")
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("listing history failed: %s", res.Output)
	}

	var picks []string
	for _, hash := range strings.Fields(res.Output) {
		if hash == req.Target.FullHash {
			continue
		}
		picks = append(picks, "pick "+hash)
	}
	return picks, nil
}

// conflictError gathers the unmerged paths and wraps them. The replay is
// deliberately left in progress.
func (RebaseDeleteStrategy) conflictError(ctx context.Context, repo *gitrepo.Repo, output string) error {
	paths, err := repo.ConflictedPaths(ctx)
	if err != nil {
		logging.Warn(ctx, "could not list conflicted paths", "error", err)
	}
	return &ConflictError{Paths: paths, Output: output}
}

// ContinueReplay resumes an interrupted replay after the user resolved
// the conflicted files. A further conflict surfaces as *ConflictError
// again.
//
// Unlike Execute, no failure here aborts the replay: by the time
// ContinueReplay runs the user has resolved files by hand, and an abort
// would throw that work away. The replay stays in place and the caller
// directs the user to retry or to AbortReplay explicitly.
func ContinueReplay(ctx context.Context, repo *gitrepo.Repo, timeout time.Duration) error {
	res, err := repo.Runner().Run(ctx, gitexec.Command{
		Args:    []string{"rebase", "--continue"},
		Timeout: timeout,
		Env:     []string{"GIT_EDITOR=true"},
	})
	if err != nil {
		return err
	}
	if !res.Success {
		if isReplayConflict(res.Output) {
			return RebaseDeleteStrategy{}.conflictError(ctx, repo, res.Output)
		}
		return fmt.Errorf("continuing replay failed: %s", res.Output)
	}
	return nil
}

// AbortReplay abandons an interrupted replay, restoring the branch to
// its pre-replay state.
func AbortReplay(ctx context.Context, repo *gitrepo.Repo, timeout time.Duration) error {
	res, err := repo.Runner().RunSimple(ctx, timeout, "rebase", "--abort")
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("aborting replay failed: %s", res.Output)
	}
	return nil
}

// abortReplay is the best-effort variant used on internal failure paths,
// where the primary error must not be masked by the abort's outcome.
func abortReplay(ctx context.Context, repo *gitrepo.Repo, timeout time.Duration) {
	if err := AbortReplay(ctx, repo, timeout); err != nil {
		logging.Warn(ctx, "failed to abort replay", "error", err)
	}
}
