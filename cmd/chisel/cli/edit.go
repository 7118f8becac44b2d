package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitexec"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/gitrepo"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/progress"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/strategy"
	"github.com/chisel-dev/chisel/cmd/chisel/cli/validation"
	"github.com/chisel-dev/chisel/redact"
)

func newEditCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "edit [revision]",
		Short: "Rewrite a commit's message",
		Long: "Rewrite the message of any commit on the current branch.\n" +
			"The tip is amended in place; anything older is replayed, which\n" +
			"gives the target and all of its descendants new hashes.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev := ""
			if len(args) > 0 {
				rev = args[0]
			}
			return runEdit(cmd.Context(), rev, message)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "replacement message (skips the prompt)")
	return cmd
}

func runEdit(ctx context.Context, rev, message string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	if err := requireNoReplay(ctx, a); err != nil {
		return err
	}

	target, err := resolveTarget(ctx, a, rev)
	if err != nil {
		return err
	}

	if message == "" {
		message, err = promptForMessage(target.Subject, target.Body)
		if err != nil {
			return err
		}
	}
	if unchangedMessage(message, target) {
		printInfo("Message unchanged, nothing to do.")
		return nil
	}

	message, err = checkForSecrets(message)
	if err != nil {
		return err
	}

	req := &strategy.EditRequest{NewMessage: message}
	req.Request, err = buildRequest(ctx, a, target)
	if err != nil {
		return err
	}

	s, err := strategy.SelectEdit(req)
	if err != nil {
		return err
	}

	printInfo("\n%s  %s", hashStyle.Render(target.ShortHash), renderMessageDiff(target.Message(), message))
	ok, err := confirm(fmt.Sprintf("Rewrite %s?", target.ShortHash), s.Description())
	if err != nil {
		return err
	}
	if !ok {
		printInfo("Edit cancelled.")
		return nil
	}

	ind := progress.New("Rewriting " + target.ShortHash)
	var execErr error
	ind.Run(func() {
		_, execErr = strategy.Edit(ctx, req)
	})
	if execErr != nil {
		return reportEngineError(execErr)
	}

	head, err := a.repo.Head(ctx)
	if err != nil {
		return err
	}
	printSuccess("Rewrote %s (branch tip is now %s)", target.ShortHash, head.ShortHash)
	return nil
}

// unchangedMessage reports whether the entered message leaves the commit
// as it is. The prompt recomposes subject and body with a blank line in
// between, so a message whose body directly follows the subject compares
// equal to that normalized form too; saving the prompt untouched never
// rewrites such a commit.
func unchangedMessage(message string, c *gitrepo.Commit) bool {
	if message == c.Message() {
		return true
	}
	composed := c.Subject
	if c.Body != "" {
		composed += "\n\n" + c.Body
	}
	return message == composed
}

// promptForMessage collects the replacement subject and body, pre-filled
// with the current ones.
func promptForMessage(subject, body string) (string, error) {
	form := NewAccessibleForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject").
				Validate(validation.ValidateSubject).
				Value(&subject),
			huh.NewText().
				Title("Body").
				Description("Leave empty for a subject-only message.").
				Value(&body),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("input cancelled: %w", err)
	}

	if body == "" {
		return subject, nil
	}
	return subject + "\n\n" + body, nil
}

// checkForSecrets warns when the replacement message looks like it
// embeds credentials and lets the user mask them before they become a
// permanent part of history.
func checkForSecrets(message string) (string, error) {
	findings := redact.Scan(message)
	if len(findings) == 0 {
		return message, nil
	}

	printWarning("The new message looks like it contains secrets:")
	for _, f := range findings {
		printInfo("  %s (%s)", f.Secret, f.Description)
	}

	const (
		choiceKeep   = "keep"
		choiceMask   = "mask"
		choiceCancel = "cancel"
	)
	choice := choiceMask
	form := NewAccessibleForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Rewriting bakes this message into history permanently.").
				Options(
					huh.NewOption("Mask the secrets", choiceMask),
					huh.NewOption("Keep the message as-is", choiceKeep),
					huh.NewOption("Cancel", choiceCancel),
				).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("confirmation cancelled: %w", err)
	}

	switch choice {
	case choiceMask:
		return redact.String(message), nil
	case choiceKeep:
		return message, nil
	default:
		return "", NewSilentError(errors.New("cancelled"))
	}
}

// confirm shows a yes/no prompt with a description of what will happen.
func confirm(title, description string) (bool, error) {
	ok := false
	form := NewAccessibleForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return ok, nil
}

// reportEngineError prints engine failures in user terms and returns a
// SilentError so main does not repeat them.
func reportEngineError(err error) error {
	var timeout *gitexec.TimeoutError
	switch {
	case errors.Is(err, gitexec.ErrToolUnavailable):
		printError("git doesn't appear to be installed or on PATH")
	case errors.As(err, &timeout):
		printError("%v", timeout)
	default:
		return err
	}
	return NewSilentError(err)
}
