package reminder

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/progress"
)

var encouragement = map[domain.Priority]string{
	domain.PriorityCritical: "This task is critical for your family workflow.",
	domain.PriorityHigh:     "Completing this important task will significantly help your family.",
}

// ComposeMessage renders the reminder text for task at now. It is meant for
// actionable tasks: a task with dependencies that has not been reminded yet
// gets a note that its prerequisites are done.
func ComposeMessage(task *domain.Task, seq *domain.Sequence, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reminder: \"%s\" from sequence \"%s\"", task.Title, seq.Title)
	b.WriteString(Urgency(task.DueDate, now))

	if len(task.Dependencies) > 0 && task.Reminder.Count == 0 {
		b.WriteString(" All prerequisites are now complete, so you can start working on this task.")
	}

	fmt.Fprintf(&b, " The sequence is %d%% complete.", progress.Rounded(seq.CompletionPct))

	if line, ok := encouragement[task.Priority]; ok {
		b.WriteString(" " + line)
	}
	return b.String()
}

// Urgency is the due-date clause of a reminder, starting with a space.
func Urgency(due *time.Time, now time.Time) string {
	if due == nil {
		return " has no due date."
	}
	hours := due.Sub(now).Hours()
	switch {
	case hours < 0:
		return fmt.Sprintf(" is overdue by %.1f days!", math.Abs(hours/24))
	case hours < 24:
		return fmt.Sprintf(" is due within %d hours!", int(math.Round(hours)))
	default:
		return fmt.Sprintf(" is due in %.1f days.", hours/24)
	}
}
