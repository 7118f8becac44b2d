// Package gitrepo provides read-only inspection of the repository being
// rewritten: resolving user-supplied revisions to commits, walking recent
// history, and querying replay state.
//
// Object inspection goes through go-git; revision resolution goes through
// the git binary so that abbreviated hashes, refs, and revision syntax
// behave exactly as they do on the user's command line.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitexec"
)

// ErrNotFound reports that a revision did not resolve to a commit.
var ErrNotFound = errors.New("commit not found")

// Commit is the identity of a single commit as the rest of the tool
// consumes it.
type Commit struct {
	FullHash  string
	ShortHash string
	Subject   string
	Body      string
	Author    string
	Email     string
	Date      time.Time

	// raw is the message exactly as stored, minus trailing newlines.
	// Subject and Body are derived views for display; joining them can
	// differ from raw when the body follows the subject without a blank
	// line.
	raw string
}

// Message returns the full commit message. Commits loaded from a
// repository round-trip byte for byte (minus trailing newlines);
// hand-built values fall back to joining subject and body.
func (c Commit) Message() string {
	if c.raw != "" {
		return c.raw
	}
	if c.Body == "" {
		return c.Subject
	}
	return c.Subject + "\n\n" + c.Body
}

// Repo pairs a go-git handle with a process runner rooted at the same
// working tree.
type Repo struct {
	gg     *git.Repository
	runner *gitexec.Runner
}

// Open opens the repository containing dir. The root is located with
// git rev-parse so that Open works from any subdirectory, and the go-git
// handle is created with linked-worktree support enabled.
func Open(ctx context.Context, dir string) (*Repo, error) {
	runner := gitexec.NewInDir("git", dir)

	res, err := runner.RunSimple(ctx, 0, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("failed to locate repository root: %w", err)
	}
	if !res.Success {
		return nil, fmt.Errorf("not inside a git repository: %s", res.Output)
	}
	root := strings.TrimSpace(res.Output)

	gg, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &Repo{
		gg:     gg,
		runner: gitexec.NewInDir("git", root),
	}, nil
}

// Runner exposes the process runner rooted at the repository root.
func (r *Repo) Runner() *gitexec.Runner {
	return r.runner
}

// Resolve turns a user-supplied revision (full hash, abbreviated hash,
// ref name, or revision expression) into a Commit. Returns ErrNotFound
// when the revision does not name a commit.
func (r *Repo) Resolve(ctx context.Context, rev string) (*Commit, error) {
	res, err := r.runner.RunSimple(ctx, 0, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", rev, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rev)
	}
	full := strings.TrimSpace(res.Output)

	return r.lookup(ctx, full)
}

// Head returns the commit at the tip of the current branch.
func (r *Repo) Head(ctx context.Context) (*Commit, error) {
	head, err := r.gg.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}
	return r.lookup(ctx, head.Hash().String())
}

// IsRoot reports whether the commit at fullHash has no parents.
func (r *Repo) IsRoot(fullHash string) (bool, error) {
	commit, err := r.gg.CommitObject(plumbing.NewHash(fullHash))
	if err != nil {
		return false, fmt.Errorf("failed to load commit %s: %w", fullHash, err)
	}
	return commit.NumParents() == 0, nil
}

// Recent returns up to limit commits reachable from HEAD, newest first.
// Returns an empty slice on an unborn branch.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Commit, error) {
	head, err := r.gg.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}

	iter, err := r.gg.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history: %w", err)
	}
	defer iter.Close()

	var commits []Commit
	for len(commits) < limit {
		c, err := iter.Next()
		if err != nil {
			break
		}
		commits = append(commits, fromObject(c))
	}
	return commits, nil
}

// ConflictedPaths lists the files left unmerged by an interrupted replay,
// parsed from porcelain status output.
func (r *Repo) ConflictedPaths(ctx context.Context) ([]string, error) {
	res, err := r.runner.RunSimple(ctx, 0, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	if !res.Success {
		return nil, fmt.Errorf("status failed: %s", res.Output)
	}

	var paths []string
	for _, line := range strings.Split(res.Output, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		switch code {
		case "UU", "AA", "DD", "AU", "UA", "DU", "UD":
			paths = append(paths, strings.TrimSpace(line[3:]))
		}
	}
	return paths, nil
}

// RebaseInProgress reports whether the repository has an interrupted
// rebase waiting for the user.
func (r *Repo) RebaseInProgress(ctx context.Context) bool {
	res, err := r.runner.RunSimple(ctx, 0, "rev-parse", "--verify", "--quiet", "REBASE_HEAD")
	return err == nil && res.Success
}

// lookup loads the commit object at fullHash and asks the git binary for
// its canonical abbreviation, so artifact names match what the user sees
// in their own log output.
func (r *Repo) lookup(ctx context.Context, fullHash string) (*Commit, error) {
	obj, err := r.gg.CommitObject(plumbing.NewHash(fullHash))
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", fullHash, err)
	}

	c := fromObject(obj)

	res, err := r.runner.RunSimple(ctx, 0, "rev-parse", "--short", fullHash)
	if err == nil && res.Success {
		c.ShortHash = strings.TrimSpace(res.Output)
	}
	return &c, nil
}

// fromObject converts a go-git commit object, splitting the message at
// the first blank line.
func fromObject(c *object.Commit) Commit {
	subject, body := splitMessage(c.Message)
	return Commit{
		FullHash:  c.Hash.String(),
		ShortHash: c.Hash.String()[:7],
		Subject:   subject,
		Body:      body,
		Author:    c.Author.Name,
		Email:     c.Author.Email,
		Date:      c.Author.When,
		raw:       strings.TrimRight(c.Message, "\n"),
	}
}

func splitMessage(message string) (subject, body string) {
	message = strings.TrimRight(message, "\n")
	subject, body, found := strings.Cut(message, "\n")
	if !found {
		return subject, ""
	}
	return strings.TrimSpace(subject), strings.TrimSpace(body)
}
