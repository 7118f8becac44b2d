package strategy

import (
	"context"
	"fmt"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitexec"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/logging"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/scratch"
)

// HistoryRewriteStrategy rewrites the message of a non-tip commit by
// replaying history through a msg-filter hook. Every commit from the
// target to HEAD gets a new hash.
//
// The replacement message never appears on a command line: it is written
// to a scratch file and the hook reads the file, keying on the target's
// full hash via $GIT_COMMIT. Both scratch files are removed before
// Execute returns, whether the replay succeeded or not.
type HistoryRewriteStrategy struct{}

// Name implements EditStrategy.
func (HistoryRewriteStrategy) Name() string { return "history-rewrite" }

// Description implements EditStrategy.
func (HistoryRewriteStrategy) Description() string {
	return "replay history from the target to the tip (descendant hashes change)"
}

// CanHandle accepts every commit; this is the fallback edit strategy.
func (HistoryRewriteStrategy) CanHandle(*EditRequest) bool { return true }

// Execute implements EditStrategy.
func (s HistoryRewriteStrategy) Execute(ctx context.Context, req *EditRequest) error {
	ctx = logging.WithComponent(ctx, "strategy."+s.Name())
	ctx = logging.WithCommit(ctx, req.Target.ShortHash)

	artifacts, release, err := req.Scratch.WriteMessageArtifacts(ctx, req.Target.FullHash, req.Target.ShortHash, req.NewMessage)
	if err != nil {
		return fmt.Errorf("preparing rewrite artifacts: %w", err)
	}
	defer release()

	// The filter argument is the hook script's path, quoted because git
	// hands it to a shell. The message itself stays inside the files.
	args := []string{
		"filter-branch", "--force",
		"--msg-filter", scratch.ShellQuote(artifacts.FilterScript),
	}
	if req.IsRoot {
		args = append(args, "--", "--all")
	} else {
		args = append(args, req.Target.FullHash+"^..HEAD")
	}

	logging.Info(ctx, "replaying history", "root", req.IsRoot)

	res, err := req.Repo.Runner().Run(ctx, gitexec.Command{
		Args:    args,
		Timeout: req.Settings.RewriteTimeout(),
		Env:     []string{"FILTER_BRANCH_SQUELCH_WARNING=1"},
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("history rewrite failed: %s", res.Output)
	}
	return nil
}
