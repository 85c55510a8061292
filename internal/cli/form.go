package cli

import (
	"errors"

	"github.com/alexanderramin/nodestore/internal/cli/formatter"
	"github.com/alexanderramin/nodestore/internal/repository"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func nodestoreHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// fieldValidator adapts a repository check that returns a violation message.
func fieldValidator(check func(string) string) func(string) error {
	return func(s string) error {
		if msg := check(s); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

var (
	validateNameField        = fieldValidator(repository.ValidateName)
	validateTypeField        = fieldValidator(repository.ValidateType)
	validateDescriptionField = fieldValidator(repository.ValidateDescription)
	validatePropertiesField  = fieldValidator(repository.ValidateProperties)
)

// nodeForm collects the editable fields of a new node. Values already in f
// (from flags) are shown as defaults.
func nodeForm(f *nodeFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Unique among live nodes").
				CharLimit(repository.MaxNameLen).
				Value(&f.name).
				Validate(validateNameField),
			huh.NewInput().
				Title("Type").
				Placeholder("database").
				Suggestions([]string{"database", "application", "api", "report"}).
				CharLimit(repository.MaxTypeLen).
				Value(&f.typ).
				Validate(validateTypeField),
			huh.NewText().
				Title("Description").
				CharLimit(repository.MaxDescriptionLen).
				Value(&f.description).
				Validate(validateDescriptionField),
			huh.NewText().
				Title("Properties").
				Description("JSON object or array, blank for none").
				Placeholder(`{"owner": "team-data"}`).
				Value(&f.properties).
				Validate(validatePropertiesField),
		),
	).WithTheme(nodestoreHuhTheme()).WithShowHelp(false)
}
