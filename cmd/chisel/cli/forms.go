package cli

import (
	"os"

	"github.com/charmbracelet/huh"
)

// NewAccessibleForm builds a huh form that honors the ACCESSIBLE
// environment variable, swapping the TUI for plain text prompts that
// work with screen readers.
func NewAccessibleForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).
		WithAccessible(os.Getenv("ACCESSIBLE") != "")
}
