package strategy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitrepo"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/scratch"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/settings"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/testutil"
)

// fixture is a throwaway repository wired to a private scratch dir.
type fixture struct {
	dir     string
	repo    *gitrepo.Repo
	scratch *scratch.Dir
	cfg     *settings.Settings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	testutil.InitRepo(t, dir)

	repo, err := gitrepo.Open(context.Background(), dir)
	require.NoError(t, err)

	sc, err := scratch.New(filepath.Join(t.TempDir(), "scratch"))
	require.NoError(t, err)

	return &fixture{dir: dir, repo: repo, scratch: sc, cfg: settings.Default()}
}

// request resolves rev into a fully populated Request.
func (f *fixture) request(t *testing.T, rev string) Request {
	t.Helper()
	ctx := context.Background()

	target, err := f.repo.Resolve(ctx, rev)
	require.NoError(t, err)
	head, err := f.repo.Head(ctx)
	require.NoError(t, err)
	isRoot, err := f.repo.IsRoot(target.FullHash)
	require.NoError(t, err)

	return Request{
		Repo:     f.repo,
		Scratch:  f.scratch,
		Settings: f.cfg,
		Target:   target,
		Head:     head,
		IsRoot:   isRoot,
	}
}

// scratchFiles returns the names currently in the scratch directory.
func (f *fixture) scratchFiles(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(f.scratch.Base(), "*"))
	require.NoError(t, err)
	return matches
}

func TestSelectEditPrefersAmendForTip(t *testing.T) {
	f := newFixture(t)
	testutil.CommitFile(t, f.dir, "a.txt", "a", "first")
	tip := testutil.CommitFile(t, f.dir, "b.txt", "b", "second")

	s, err := SelectEdit(&EditRequest{Request: f.request(t, tip)})
	require.NoError(t, err)
	assert.Equal(t, "amend", s.Name())
}

func TestSelectEditFallsBackToRewriteForAncestor(t *testing.T) {
	f := newFixture(t)
	first := testutil.CommitFile(t, f.dir, "a.txt", "a", "first")
	testutil.CommitFile(t, f.dir, "b.txt", "b", "second")

	s, err := SelectEdit(&EditRequest{Request: f.request(t, first)})
	require.NoError(t, err)
	assert.Equal(t, "history-rewrite", s.Name())
}

func TestSelectDeletePrefersTipReset(t *testing.T) {
	f := newFixture(t)
	testutil.CommitFile(t, f.dir, "a.txt", "a", "first")
	tip := testutil.CommitFile(t, f.dir, "b.txt", "b", "second")

	s, err := SelectDelete(&DeleteRequest{Request: f.request(t, tip)})
	require.NoError(t, err)
	assert.Equal(t, "tip-reset", s.Name())
}

func TestSelectDeleteUsesReplayForAncestor(t *testing.T) {
	f := newFixture(t)
	first := testutil.CommitFile(t, f.dir, "a.txt", "a", "first")
	testutil.CommitFile(t, f.dir, "b.txt", "b", "second")

	s, err := SelectDelete(&DeleteRequest{Request: f.request(t, first)})
	require.NoError(t, err)
	assert.Equal(t, "rebase-delete", s.Name())
}

func TestSelectDeleteUsesReplayForRootTip(t *testing.T) {
	// A sole commit is the tip, but a root has no parent to reset to.
	f := newFixture(t)
	only := testutil.CommitFile(t, f.dir, "a.txt", "a", "only")

	s, err := SelectDelete(&DeleteRequest{Request: f.request(t, only)})
	require.NoError(t, err)
	assert.Equal(t, "rebase-delete", s.Name())
}

func TestFallbackStrategiesAcceptEverything(t *testing.T) {
	// The last strategy in each chain must accept any request, or
	// selection could come up empty.
	assert.True(t, HistoryRewriteStrategy{}.CanHandle(nil))
	assert.True(t, RebaseDeleteStrategy{}.CanHandle(nil))
}

func TestEditRejectsEmptyMessageBeforeRunningAnything(t *testing.T) {
	f := newFixture(t)
	testutil.CommitFile(t, f.dir, "a.txt", "a", "first")
	before := testutil.GetHeadHash(t, f.dir)

	_, err := Edit(context.Background(), &EditRequest{
		Request:    f.request(t, "HEAD"),
		NewMessage: "   ",
	})
	require.Error(t, err)
	assert.Equal(t, before, testutil.GetHeadHash(t, f.dir))
}

func TestEditUsesInjectedValidator(t *testing.T) {
	f := newFixture(t)
	testutil.CommitFile(t, f.dir, "a.txt", "a", "first")

	called := false
	_, err := Edit(context.Background(), &EditRequest{
		Request:    f.request(t, "HEAD"),
		NewMessage: "anything",
		Validate: func(string) error {
			called = true
			return assert.AnError
		},
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.True(t, called)
}

func TestConflictErrorMessage(t *testing.T) {
	withPaths := &ConflictError{Paths: []string{"a.txt", "b.txt"}}
	assert.Contains(t, withPaths.Error(), "a.txt, b.txt")

	empty := &ConflictError{}
	assert.NotEmpty(t, empty.Error())
}

func TestIsReplayConflict(t *testing.T) {
	assert.True(t, isReplayConflict("CONFLICT (content): Merge conflict in a.txt"))
	assert.True(t, isReplayConflict("error: could not apply abc123... second"))
	assert.False(t, isReplayConflict("fatal: not a git repository"))
}
