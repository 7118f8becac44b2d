package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitrepo"
)

func TestSilentErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := NewSilentError(inner)

	assert.Equal(t, "boom", err.Error())
	assert.True(t, errors.Is(err, inner))

	var silent *SilentError
	assert.True(t, errors.As(error(err), &silent))
}

func TestRenderMessageDiffKeepsBothSides(t *testing.T) {
	out := renderMessageDiff("fix: old subject", "fix: new subject")

	// Styling may be stripped outside a terminal; the text itself must
	// always survive.
	assert.Contains(t, out, "old")
	assert.Contains(t, out, "new")
	assert.Contains(t, out, "fix: ")
}

func TestRenderMessageDiffIdenticalMessages(t *testing.T) {
	out := renderMessageDiff("same", "same")
	assert.Contains(t, out, "same")
}

func TestUnchangedMessageAcceptsNormalizedForm(t *testing.T) {
	c := &gitrepo.Commit{Subject: "fix: handle nil", Body: "The pointer was nil."}

	assert.True(t, unchangedMessage("fix: handle nil\n\nThe pointer was nil.", c))
	assert.False(t, unchangedMessage("fix: handle nil\n\nReworded body.", c))
	assert.False(t, unchangedMessage("reworded subject", c))

	subjectOnly := &gitrepo.Commit{Subject: "fix: handle nil"}
	assert.True(t, unchangedMessage("fix: handle nil", subjectOnly))
	assert.False(t, unchangedMessage("fix: handle nil\n\nnew body", subjectOnly))
}

func TestRootCmdWiring(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"edit", "delete", "log", "version"} {
		assert.Contains(t, joined, want)
	}
	assert.True(t, root.SilenceErrors)
}

func TestDeleteFlagsAreExclusive(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	root.SetArgs([]string{"delete", "--continue", "--abort"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestAddLimitFlagDefault(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var limit int
	addLimitFlag(fs, &limit)

	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, 10, limit)

	require.NoError(t, fs.Parse([]string{"-n", "3"}))
	assert.Equal(t, 3, limit)
}
