package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskseq/internal/cli/formatter"
	"github.com/alexanderramin/taskseq/internal/importer"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func taskseqHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func confirmForm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(taskseqHuhTheme()).WithShowHelp(false).Run()
	return ok, err
}

// sequenceDraft is filled in by the interactive create form.
type sequenceDraft struct {
	Title      string
	Category   string
	Priority   string
	DueDate    string
	Tasks      string
	Sequential bool
}

// runSequenceForm prompts for the fields of a new sequence. Tasks are
// entered one per line.
func runSequenceForm(d *sequenceDraft) error {
	if d.Priority == "" {
		d.Priority = "medium"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Placeholder("Plan the birthday party").Value(&d.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewInput().Title("Category").Placeholder("Events").Value(&d.Category),
			huh.NewSelect[string]().Title("Priority").
				Options(huh.NewOptions("low", "medium", "high", "critical")...).
				Value(&d.Priority),
			huh.NewInput().Title("Due Date (YYYY-MM-DD, blank for none)").Placeholder("2025-06-30").
				Value(&d.DueDate).Validate(validateOptionalDate),
		),
		huh.NewGroup(
			huh.NewText().Title("Tasks, one per line").Value(&d.Tasks),
			huh.NewConfirm().Title("Each task waits for the one before it?").Value(&d.Sequential),
		),
	).WithTheme(taskseqHuhTheme()).WithShowHelp(false).Run()
}

func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := importer.ParseDate(s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}
