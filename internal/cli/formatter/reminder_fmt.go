package formatter

import (
	"strings"

	"github.com/alexanderramin/taskseq/internal/app"
)

// FormatReminders renders pending reminders, one message per task.
func FormatReminders(reminders []app.ReminderToSend) string {
	if len(reminders) == 0 {
		return Dim("Nothing to remind about right now.")
	}
	var b strings.Builder
	for i, r := range reminders {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(PriorityColor(r.Priority).Render("●") + " " + StyleFg.Render(r.Message) + "\n")
		meta := "task " + r.TaskID
		if r.AssignedTo != "" {
			meta += " · @" + r.AssignedTo
		}
		b.WriteString("  " + Dim(meta) + "\n")
	}
	return RenderBox("Reminders", strings.TrimRight(b.String(), "\n"))
}
