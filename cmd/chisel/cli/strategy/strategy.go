// Package strategy implements the history mutation engine: every way
// the tool can change an existing commit, and the selection logic that
// picks the cheapest one that applies.
//
// Strategies are consulted in declaration order and the first one whose
// CanHandle accepts the request wins, so the cheap tip-only paths always
// shadow the full history-replay paths.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitrepo"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/scratch"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/settings"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/validation"
)

// Request carries everything a strategy needs to mutate one commit.
type Request struct {
	Repo     *gitrepo.Repo
	Scratch  *scratch.Dir
	Settings *settings.Settings

	// Target is the commit being edited or deleted.
	Target *gitrepo.Commit

	// Head is the current branch tip.
	Head *gitrepo.Commit

	// IsRoot is true when Target has no parents.
	IsRoot bool
}

// MessageValidator rejects a replacement message before any subprocess
// runs. Returning an error aborts the edit with nothing touched.
type MessageValidator func(message string) error

// EditRequest is a Request plus the replacement message.
type EditRequest struct {
	Request

	// NewMessage is the full replacement message, used verbatim.
	NewMessage string

	// Validate overrides the default message check, which only rejects
	// an empty or multi-line subject.
	Validate MessageValidator
}

// validate applies the request's validator, or the default one.
func (r *EditRequest) validate() error {
	v := r.Validate
	if v == nil {
		v = defaultMessageValidator
	}
	return v(r.NewMessage)
}

// defaultMessageValidator accepts any message with a usable subject line.
func defaultMessageValidator(message string) error {
	subject, _, _ := strings.Cut(message, "\n")
	return validation.ValidateSubject(subject)
}

// DeleteRequest asks for Target to be removed from history.
type DeleteRequest struct {
	Request
}

// EditStrategy rewrites the message of a single commit.
type EditStrategy interface {
	// Name returns the strategy identifier.
	Name() string

	// Description returns a human-readable summary of what executing
	// this strategy will do, shown to the user before they confirm.
	Description() string

	// CanHandle reports whether this strategy applies to the request.
	CanHandle(req *EditRequest) bool

	// Execute performs the rewrite. Any scratch files it creates are
	// removed before it returns, on success and on failure alike.
	Execute(ctx context.Context, req *EditRequest) error
}

// DeleteStrategy removes a single commit from history.
type DeleteStrategy interface {
	Name() string
	Description() string
	CanHandle(req *DeleteRequest) bool
	Execute(ctx context.Context, req *DeleteRequest) error
}

// errNoStrategy indicates a gap in strategy coverage. The fallback
// strategies accept every request, so hitting this is a bug.
var errNoStrategy = errors.New("no strategy can handle this commit")

// editStrategies returns the edit strategies in selection order.
func editStrategies() []EditStrategy {
	return []EditStrategy{
		AmendStrategy{},
		HistoryRewriteStrategy{},
	}
}

// deleteStrategies returns the delete strategies in selection order.
func deleteStrategies() []DeleteStrategy {
	return []DeleteStrategy{
		TipResetStrategy{},
		RebaseDeleteStrategy{},
	}
}

// SelectEdit returns the first edit strategy that accepts the request.
func SelectEdit(req *EditRequest) (EditStrategy, error) {
	for _, s := range editStrategies() {
		if s.CanHandle(req) {
			return s, nil
		}
	}
	return nil, errNoStrategy
}

// SelectDelete returns the first delete strategy that accepts the request.
func SelectDelete(req *DeleteRequest) (DeleteStrategy, error) {
	for _, s := range deleteStrategies() {
		if s.CanHandle(req) {
			return s, nil
		}
	}
	return nil, errNoStrategy
}

// Edit rewrites the target commit's message using the first applicable
// strategy and returns the strategy that ran. The message is validated
// before anything touches the repository.
func Edit(ctx context.Context, req *EditRequest) (EditStrategy, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	s, err := SelectEdit(req)
	if err != nil {
		return nil, err
	}
	return s, s.Execute(ctx, req)
}

// Delete removes the target commit using the first applicable strategy
// and returns the strategy that ran.
func Delete(ctx context.Context, req *DeleteRequest) (DeleteStrategy, error) {
	s, err := SelectDelete(req)
	if err != nil {
		return nil, err
	}
	return s, s.Execute(ctx, req)
}

// ConflictError reports a history replay interrupted by merge conflicts.
// The repository is left in the conflicted state so the user can resolve
// the files and continue, or abort.
type ConflictError struct {
	// Paths are the files git reported as unmerged.
	Paths []string

	// Output is the replay tool's diagnostic output, verbatim.
	Output string
}

func (e *ConflictError) Error() string {
	if len(e.Paths) == 0 {
		return "history replay stopped on a conflict"
	}
	return fmt.Sprintf("history replay stopped on conflicts in: %s", strings.Join(e.Paths, ", "))
}

// isReplayConflict recognizes conflict diagnostics in replay output.
func isReplayConflict(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "conflict") || strings.Contains(lower, "could not apply")
}
