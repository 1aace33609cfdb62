package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDateFrom returns a human-friendly relative date string from a reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	days := int(math.Round(t.Sub(now).Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// DueDate renders an optional due date relative to now, red when overdue or
// within two days and yellow within a week.
func DueDate(t *time.Time, now time.Time) string {
	if t == nil {
		return Dim("--")
	}
	text := RelativeDateFrom(*t, now)
	days := int(math.Round(t.Sub(now).Hours() / 24))
	switch {
	case days <= 2:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	}
	return StyleFg.Render(text)
}

// StatusPill returns a colored indicator for a sequence status.
func StatusPill(status domain.SequenceStatus) string {
	switch status {
	case domain.SequenceActive:
		return StyleGreen.Render("● Active")
	case domain.SequenceCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.SequenceArchived:
		return StyleDim.Render("✖ Archived")
	default:
		return StyleDim.Render(string(status))
	}
}

// TaskMark is the leading glyph of a task row.
func TaskMark(t *domain.Task, blocked bool) string {
	switch {
	case t.Completed:
		return StyleGreen.Render("✔")
	case blocked:
		return StyleDim.Render("⊘")
	default:
		return StyleBlue.Render("○")
	}
}

// StateLine explains a depgraph state in one sentence.
func StateLine(state depgraph.State) string {
	switch state {
	case depgraph.StateComplete:
		return StyleGreen.Render("All tasks are done.")
	case depgraph.StateDeadlocked:
		return StyleRed.Render("Every remaining task is blocked by an unfinished dependency.")
	case depgraph.StateEmpty:
		return Dim("No tasks yet.")
	default:
		return ""
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}
