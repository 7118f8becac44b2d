package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	diffAddStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	diffDelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Strikethrough(true)
)

func printSuccess(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Println(errorStyle.Render("✗ " + fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Println(warnStyle.Render("! " + fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// renderMessageDiff shows what a message rewrite will change, deletions
// struck through and insertions highlighted.
func renderMessageDiff(oldMessage, newMessage string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldMessage, newMessage, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffInsert:
			b.WriteString(diffAddStyle.Render(d.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(diffDelStyle.Render(d.Text))
		}
	}
	return b.String()
}
