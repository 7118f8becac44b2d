package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recent commits on this branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLog(cmd.Context(), limit)
		},
	}

	addLimitFlag(cmd.Flags(), &limit)
	return cmd
}

// addLimitFlag registers the shared history-depth flag.
func addLimitFlag(fs *pflag.FlagSet, limit *int) {
	fs.IntVarP(limit, "limit", "n", 10, "number of commits to show")
}

func runLog(ctx context.Context, limit int) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	commits, err := a.repo.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		printInfo("This branch has no commits yet.")
		return nil
	}

	for _, c := range commits {
		printInfo("%s  %s  %s",
			hashStyle.Render(c.ShortHash),
			c.Subject,
			dimStyle.Render(c.Date.Format("2006-01-02")),
		)
	}
	return nil
}
