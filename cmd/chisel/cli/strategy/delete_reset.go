package strategy

import (
	"context"
	"fmt"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitexec"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/logging"
)

// TipResetStrategy deletes the tip commit by moving the branch back to
// its parent. Nothing is replayed and no scratch files are written, so
// this is always preferred when it applies.
type TipResetStrategy struct{}

// Name implements DeleteStrategy.
func (TipResetStrategy) Name() string { return "tip-reset" }

// Description implements DeleteStrategy.
func (TipResetStrategy) Description() string {
	return "drop the tip commit by resetting the branch to its parent (fast)"
}

// CanHandle accepts the branch tip, unless it is the root commit: a root
// has no parent to reset to.
func (TipResetStrategy) CanHandle(req *DeleteRequest) bool {
	return req.Head != nil && req.Target.FullHash == req.Head.FullHash && !req.IsRoot
}

// Execute implements DeleteStrategy. The working tree and index are
// reset to the parent commit; the deleted commit's changes are gone.
func (s TipResetStrategy) Execute(ctx context.Context, req *DeleteRequest) error {
	ctx = logging.WithComponent(ctx, "strategy."+s.Name())
	logging.Info(ctx, "resetting branch to parent", "commit", req.Target.ShortHash)

	res, err := req.Repo.Runner().Run(ctx, gitexec.Command{
		Args:    []string{"reset", "--hard", "HEAD~1"},
		Timeout: req.Settings.CommandTimeout(),
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("reset failed: %s", res.Output)
	}
	return nil
}
