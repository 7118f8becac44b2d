package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitrepo"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/logging"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/scratch"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/settings"
)

const accessibilityHelp = `
Environment Variables:
  ACCESSIBLE    Set to any value (e.g., ACCESSIBLE=1) to enable accessibility
                mode. This uses simpler text prompts instead of interactive
                TUI elements, which works better with screen readers.
`

// Version information (can be set at build time)
var (
	Version = "dev"
	Commit  = "unknown"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chisel",
		Short: "Rewrite commit history safely",
		Long: "Chisel edits and deletes commits anywhere in your branch history,\n" +
			"picking the cheapest rewrite that preserves everything you didn't touch." +
			accessibilityHelp,
		// Let main.go handle error printing to avoid duplication
		SilenceErrors: true,
		// Hide completion command from help but keep it functional
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.SetLogLevelGetter(func() string {
				cfg, err := settings.Load()
				if err != nil {
					return ""
				}
				return cfg.LogLevel
			})
			// A broken log file must not block the actual work.
			if err := logging.Init(); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: logging disabled:", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			logging.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newLogCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("chisel %s (%s)\n", Version, Commit)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// app bundles the resources every mutating command needs.
type app struct {
	cfg     *settings.Settings
	repo    *gitrepo.Repo
	scratch *scratch.Dir
}

// newApp loads settings, opens the repository at the working directory,
// and prepares the scratch directory.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := settings.Load()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	repo, err := gitrepo.Open(ctx, ".")
	if err != nil {
		return nil, err
	}

	sc, err := scratch.New(cfg.ScratchDir)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, repo: repo, scratch: sc}, nil
}
