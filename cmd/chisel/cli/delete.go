package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/progress"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/strategy"
)

func newDeleteCmd() *cobra.Command {
	var (
		continueReplay bool
		abortReplay    bool
	)

	cmd := &cobra.Command{
		Use:   "delete [revision]",
		Short: "Remove a commit from history",
		Long: "Remove a commit and its changes from the current branch.\n" +
			"Deleting the tip is a plain reset; anything older replays the\n" +
			"branch without it, which gives every descendant a new hash.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch {
			case continueReplay && abortReplay:
				return errors.New("--continue and --abort are mutually exclusive")
			case continueReplay:
				return runDeleteContinue(ctx)
			case abortReplay:
				return runDeleteAbort(ctx)
			}
			rev := ""
			if len(args) > 0 {
				rev = args[0]
			}
			return runDelete(ctx, rev)
		},
	}

	cmd.Flags().BoolVar(&continueReplay, "continue", false, "resume an interrupted replay after resolving conflicts")
	cmd.Flags().BoolVar(&abortReplay, "abort", false, "abandon an interrupted replay")
	return cmd
}

func runDelete(ctx context.Context, rev string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	if err := requireNoReplay(ctx, a); err != nil {
		return err
	}

	target, err := resolveTarget(ctx, a, rev)
	if err != nil {
		return err
	}

	req := &strategy.DeleteRequest{}
	req.Request, err = buildRequest(ctx, a, target)
	if err != nil {
		return err
	}

	s, err := strategy.SelectDelete(req)
	if err != nil {
		return err
	}

	printInfo("\n%s  %s", hashStyle.Render(target.ShortHash), target.Subject)
	ok, err := confirm(
		fmt.Sprintf("Delete %s?", target.ShortHash),
		s.Description()+"\nThe commit's changes are removed with it. This cannot be undone from chisel.",
	)
	if err != nil {
		return err
	}
	if !ok {
		printInfo("Delete cancelled.")
		return nil
	}

	ind := progress.New("Deleting " + target.ShortHash)
	var execErr error
	ind.Run(func() {
		execErr = s.Execute(ctx, req)
	})
	if execErr != nil {
		return handleDeleteError(ctx, a, execErr)
	}

	printSuccess("Deleted %s", target.ShortHash)
	return nil
}

// handleDeleteError lets the user decide what to do with a conflicted
// replay; every other failure goes through the usual reporting.
func handleDeleteError(ctx context.Context, a *app, err error) error {
	var conflict *strategy.ConflictError
	if !errors.As(err, &conflict) {
		return reportEngineError(err)
	}

	printWarning("The replay stopped on conflicts:")
	for _, p := range conflict.Paths {
		printInfo("  %s", p)
	}

	abort, err := confirm(
		"Abort the replay?",
		"Abort restores the branch exactly as it was.\n"+
			"Keep it to resolve the files yourself, then run 'chisel delete --continue'.",
	)
	if err != nil {
		return err
	}
	if !abort {
		printInfo("Replay left in place. Resolve the conflicts, stage the files, then run 'chisel delete --continue'.")
		return NewSilentError(conflict)
	}
	if err := strategy.AbortReplay(ctx, a.repo, a.cfg.CommandTimeout()); err != nil {
		return err
	}
	printSuccess("Replay aborted, branch restored.")
	return NewSilentError(conflict)
}

func runDeleteContinue(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	if !a.repo.RebaseInProgress(ctx) {
		return errors.New("no replay in progress")
	}

	ind := progress.New("Resuming replay")
	var execErr error
	ind.Run(func() {
		execErr = strategy.ContinueReplay(ctx, a.repo, a.cfg.RebaseTimeout())
	})
	if execErr != nil {
		var conflict *strategy.ConflictError
		if errors.As(execErr, &conflict) {
			return handleDeleteError(ctx, a, execErr)
		}
		// The replay is left in place so the resolved files survive.
		printWarning("The replay could not finish and is still in place.")
		printInfo("Fix the issue and run 'chisel delete --continue' again, or 'chisel delete --abort' to restore the branch.")
		return reportEngineError(execErr)
	}

	printSuccess("Replay finished.")
	return nil
}

func runDeleteAbort(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	if !a.repo.RebaseInProgress(ctx) {
		return errors.New("no replay in progress")
	}

	if err := strategy.AbortReplay(ctx, a.repo, a.cfg.CommandTimeout()); err != nil {
		return err
	}
	printSuccess("Replay aborted, branch restored.")
	return nil
}
