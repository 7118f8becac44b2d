package strategy

import (
	"context"
	"fmt"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitexec"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/logging"
)

// AmendStrategy rewrites the tip commit in place with git commit --amend.
// It touches nothing but HEAD and writes no scratch files: the new
// message travels over the child's standard input.
type AmendStrategy struct{}

// Name implements EditStrategy.
func (AmendStrategy) Name() string { return "amend" }

// Description implements EditStrategy.
func (AmendStrategy) Description() string {
	return "amend the tip commit in place (fast, nothing replayed)"
}

// CanHandle accepts only the current branch tip.
func (AmendStrategy) CanHandle(req *EditRequest) bool {
	return req.Head != nil && req.Target.FullHash == req.Head.FullHash
}

// Execute implements EditStrategy.
func (s AmendStrategy) Execute(ctx context.Context, req *EditRequest) error {
	ctx = logging.WithComponent(ctx, "strategy."+s.Name())
	logging.Info(ctx, "amending tip commit", "commit", req.Target.ShortHash)

	res, err := req.Repo.Runner().Run(ctx, gitexec.Command{
		Args:    []string{"commit", "--amend", "--no-verify", "-F", "-"},
		Timeout: req.Settings.CommandTimeout(),
		Stdin:   req.NewMessage,
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("amend failed: %s", res.Output)
	}
	return nil
}
