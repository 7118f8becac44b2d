package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitrepo"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/strategy"
)

// selectLimit caps how many commits the interactive picker offers.
const selectLimit = 20

// resolveTarget returns the commit named by rev, or runs the interactive
// picker over recent history when rev is empty.
func resolveTarget(ctx context.Context, a *app, rev string) (*gitrepo.Commit, error) {
	if rev != "" {
		target, err := a.repo.Resolve(ctx, rev)
		if err != nil {
			if errors.Is(err, gitrepo.ErrNotFound) {
				return nil, fmt.Errorf("%q does not name a commit on this branch", rev)
			}
			return nil, err
		}
		return target, nil
	}

	recent, err := a.repo.Recent(ctx, selectLimit)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, errors.New("this branch has no commits yet")
	}

	options := make([]huh.Option[string], len(recent))
	for i, c := range recent {
		options[i] = huh.NewOption(fmt.Sprintf("%s  %s", c.ShortHash, c.Subject), c.FullHash)
	}

	var chosen string
	form := NewAccessibleForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pick a commit").
				Options(options...).
				Value(&chosen),
		),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return a.repo.Resolve(ctx, chosen)
}

// buildRequest assembles the engine request for target.
func buildRequest(ctx context.Context, a *app, target *gitrepo.Commit) (strategy.Request, error) {
	head, err := a.repo.Head(ctx)
	if err != nil {
		return strategy.Request{}, err
	}
	isRoot, err := a.repo.IsRoot(target.FullHash)
	if err != nil {
		return strategy.Request{}, err
	}
	return strategy.Request{
		Repo:     a.repo,
		Scratch:  a.scratch,
		Settings: a.cfg,
		Target:   target,
		Head:     head,
		IsRoot:   isRoot,
	}, nil
}

// requireNoReplay refuses to start a new mutation while an interrupted
// replay is waiting for the user.
func requireNoReplay(ctx context.Context, a *app) error {
	if a.repo.RebaseInProgress(ctx) {
		return errors.New("a history replay is in progress; resolve it with 'chisel delete --continue' or 'chisel delete --abort'")
	}
	return nil
}
