package strategy

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitrepo"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/testutil"
)

func TestEditTipAmendsInPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := testutil.CommitFile(t, f.dir, "a.txt", "a", "first")
	tip := testutil.CommitFile(t, f.dir, "b.txt", "b", "second")

	s, err := Edit(ctx, &EditRequest{
		Request:    f.request(t, tip),
		NewMessage: "feat: better subject\n\nWith a body.",
	})
	require.NoError(t, err)
	assert.Equal(t, "amend", s.Name())

	messages := testutil.ListMessages(t, f.dir)
	require.Len(t, messages, 2)
	assert.Equal(t, "feat: better subject\n\nWith a body.", strings.TrimRight(messages[0], "\n"))
	assert.Equal(t, "first", strings.TrimRight(messages[1], "\n"))

	// The ancestor is untouched and the tip got a new hash.
	head, err := f.repo.Head(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, tip, head.FullHash)
	resolved, err := f.repo.Resolve(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, resolved.FullHash)

	// A tip edit must leave nothing behind in the scratch directory
	// because it never writes there in the first place.
	assert.Empty(t, f.scratchFiles(t))
}

func TestEditAncestorReplaysHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := testutil.CommitFile(t, f.dir, "a.txt", "a", "first")
	middle := testutil.CommitFile(t, f.dir, "b.txt", "b", "second")
	oldHead := testutil.CommitFile(t, f.dir, "c.txt", "c", "third")

	s, err := Edit(ctx, &EditRequest{
		Request:    f.request(t, middle),
		NewMessage: "fix: second, reworded",
	})
	require.NoError(t, err)
	assert.Equal(t, "history-rewrite", s.Name())

	messages := testutil.ListMessages(t, f.dir)
	require.Len(t, messages, 3)
	assert.Equal(t, "third", strings.TrimRight(messages[0], "\n"))
	assert.Equal(t, "fix: second, reworded", strings.TrimRight(messages[1], "\n"))
	assert.Equal(t, "first", strings.TrimRight(messages[2], "\n"))

	// The target and every descendant were rewritten; the commit
	// before the target kept its hash.
	head, err := f.repo.Head(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, oldHead, head.FullHash)
	resolved, err := f.repo.Resolve(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, root, resolved.FullHash)

	// Content is untouched by a message rewrite.
	assert.True(t, testutil.FileExists(f.dir, "a.txt"))
	assert.True(t, testutil.FileExists(f.dir, "b.txt"))
	assert.True(t, testutil.FileExists(f.dir, "c.txt"))

	assert.Empty(t, f.scratchFiles(t))
}

func TestEditRootCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := testutil.CommitFile(t, f.dir, "a.txt", "a", "first")
	testutil.CommitFile(t, f.dir, "b.txt", "b", "second")

	req := f.request(t, root)
	require.True(t, req.IsRoot)

	_, err := Edit(ctx, &EditRequest{Request: req, NewMessage: "chore: initial import"})
	require.NoError(t, err)

	messages := testutil.ListMessages(t, f.dir)
	require.Len(t, messages, 2)
	assert.Equal(t, "chore: initial import", strings.TrimRight(messages[1], "\n"))
	assert.Empty(t, f.scratchFiles(t))
}

func TestEditHostileMessageIsInert(t *testing.T) {
	// Shell metacharacters in the replacement message must land in the
	// rewritten commit byte-for-byte and must never execute.
	f := newFixture(t)
	ctx := context.Background()

	testutil.CommitFile(t, f.dir, "canary.txt", "alive", "first")
	middle := testutil.CommitFile(t, f.dir, "b.txt", "b", "second")
	testutil.CommitFile(t, f.dir, "c.txt", "c", "third")

	hostile := "fix: quote's revenge\"; rm -rf canary.txt; $(touch pwned) `touch pwned2` && echo $HOME"

	_, err := Edit(ctx, &EditRequest{
		Request:    f.request(t, middle),
		NewMessage: hostile,
	})
	require.NoError(t, err)

	messages := testutil.ListMessages(t, f.dir)
	require.Len(t, messages, 3)
	assert.Equal(t, hostile, strings.TrimRight(messages[1], "\n"))

	assert.True(t, testutil.FileExists(f.dir, "canary.txt"))
	assert.False(t, testutil.FileExists(f.dir, "pwned"))
	assert.False(t, testutil.FileExists(f.dir, "pwned2"))
}

func TestEditFailureStillCleansScratch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testutil.CommitFile(t, f.dir, "a.txt", "a", "first")
	testutil.CommitFile(t, f.dir, "b.txt", "b", "second")

	// A well-formed hash that is not in this repository makes the
	// replay fail after the artifacts have been written.
	phantom := &gitrepo.Commit{
		FullHash:  strings.Repeat("deadbeef", 5),
		ShortHash: "deadbee",
		Subject:   "ghost",
	}
	req := f.request(t, "HEAD")
	req.Target = phantom

	err := HistoryRewriteStrategy{}.Execute(ctx, &EditRequest{
		Request:    req,
		NewMessage: "never lands",
	})
	require.Error(t, err)

	assert.Empty(t, f.scratchFiles(t), "failed rewrite left artifacts behind")
}
