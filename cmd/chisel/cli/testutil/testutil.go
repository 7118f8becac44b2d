// Package testutil provides shared helpers for tests that operate on
// real git repositories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// InitRepo initializes a git repository in the given directory with test
// user config and GPG signing disabled, so both go-git and the git
// binary can commit without global configuration.
func InitRepo(t *testing.T, repoDir string) {
	t.Helper()

	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("failed to init git repo: %v", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		t.Fatalf("failed to get repo config: %v", err)
	}
	cfg.User.Name = "Test User"
	cfg.User.Email = "test@example.com"

	if cfg.Raw == nil {
		cfg.Raw = config.New()
	}
	cfg.Raw.Section("commit").SetOption("gpgsign", "false")

	if err := repo.SetConfig(cfg); err != nil {
		t.Fatalf("failed to set repo config: %v", err)
	}
}

// WriteFile creates a file with the given content in the repo directory.
// It creates parent directories as needed.
func WriteFile(t *testing.T, repoDir, path, content string) {
	t.Helper()

	fullPath := filepath.Join(repoDir, path)

	dir := filepath.Dir(fullPath)
	//nolint:gosec // test code, permissions are intentionally standard
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	//nolint:gosec // test code, permissions are intentionally standard
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// FileExists checks if a file exists in the repo directory.
func FileExists(repoDir, path string) bool {
	fullPath := filepath.Join(repoDir, path)
	_, err := os.Stat(fullPath)
	return err == nil
}

// GitAdd stages files for commit.
func GitAdd(t *testing.T, repoDir string, paths ...string) {
	t.Helper()

	worktree := openWorktree(t, repoDir)
	for _, path := range paths {
		if _, err := worktree.Add(path); err != nil {
			t.Fatalf("failed to add file %s: %v", path, err)
		}
	}
}

// GitCommit creates a commit with all staged files and returns its hash.
func GitCommit(t *testing.T, repoDir, message string) string {
	t.Helper()

	worktree := openWorktree(t, repoDir)
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

// CommitFile writes a file, stages it, and commits it in one step.
// Returns the new commit hash.
func CommitFile(t *testing.T, repoDir, path, content, message string) string {
	t.Helper()

	WriteFile(t, repoDir, path, content)
	GitAdd(t, repoDir, path)
	return GitCommit(t, repoDir, message)
}

// GetHeadHash returns the current HEAD commit hash.
func GetHeadHash(t *testing.T, repoDir string) string {
	t.Helper()

	repo := openRepo(t, repoDir)
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("failed to get HEAD: %v", err)
	}
	return head.Hash().String()
}

// GetCommitMessage returns the commit message for the given commit hash.
func GetCommitMessage(t *testing.T, repoDir, hash string) string {
	t.Helper()

	repo := openRepo(t, repoDir)
	commit, err := repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		t.Fatalf("failed to get commit %s: %v", hash, err)
	}
	return commit.Message
}

// ListMessages returns the commit messages reachable from HEAD, newest
// first. Returns nil on an unborn branch.
func ListMessages(t *testing.T, repoDir string) []string {
	t.Helper()

	repo := openRepo(t, repoDir)
	head, err := repo.Head()
	if err != nil {
		return nil
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		t.Fatalf("failed to iterate commits: %v", err)
	}
	defer iter.Close()

	var messages []string
	//nolint:errcheck,gosec // ForEach callback doesn't return errors we need to handle
	iter.ForEach(func(c *object.Commit) error {
		messages = append(messages, c.Message)
		return nil
	})
	return messages
}

// CountCommits returns the number of commits reachable from HEAD.
func CountCommits(t *testing.T, repoDir string) int {
	t.Helper()
	return len(ListMessages(t, repoDir))
}

func openRepo(t *testing.T, repoDir string) *git.Repository {
	t.Helper()

	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		t.Fatalf("failed to open git repo: %v", err)
	}
	return repo
}

func openWorktree(t *testing.T, repoDir string) *git.Worktree {
	t.Helper()

	worktree, err := openRepo(t, repoDir).Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	return worktree
}
