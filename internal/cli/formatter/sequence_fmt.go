package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/domain"
)

// FormatSequenceList renders family overviews with their next task.
func FormatSequenceList(overviews []app.SequenceOverview, now time.Time) string {
	if len(overviews) == 0 {
		return Dim("No sequences yet. Create one with `taskseq sequence create`.")
	}

	headers := []string{"ID", "TITLE", "STATUS", "PROGRESS", "NEXT", "DUE"}
	rows := make([][]string, 0, len(overviews))
	for _, o := range overviews {
		s := o.Sequence
		next := StateLine(o.State)
		if o.Next != nil {
			next = o.Next.Title
		}
		rows = append(rows, []string{
			TruncID(s.ID),
			Bold(s.Title),
			StatusPill(s.Status),
			RenderProgress(s.CompletionPct, 10),
			next,
			DueDate(s.DueDate, now),
		})
	}
	return RenderBox("Sequences", RenderTable(headers, rows))
}

// FormatSequenceView renders one sequence with its ordered task list.
func FormatSequenceView(v *app.SequenceView, now time.Time) string {
	s := v.Sequence
	var b strings.Builder

	b.WriteString(Bold(s.Title) + "  " + StyleDim.Render(s.Category) + "\n")
	if s.Description != "" {
		b.WriteString(StyleFg.Render(s.Description) + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n", Dim("STATUS  "), StatusPill(s.Status))
	fmt.Fprintf(&b, "%s  %s\n", Dim("PROGRESS"), RenderProgress(s.CompletionPct, 20))
	fmt.Fprintf(&b, "%s  %s\n", Dim("PRIORITY"), PriorityBadge(s.Priority))
	fmt.Fprintf(&b, "%s  %s\n", Dim("DUE     "), DueDate(s.DueDate, now))
	fmt.Fprintf(&b, "%s  %s / %s\n", Dim("STRATEGY"), s.ReminderStrategy, s.DelegationStrategy)
	fmt.Fprintf(&b, "%s  %s\n", Dim("ID      "), Dim(s.ID))
	b.WriteString("\n" + Header("Tasks") + "\n")

	if len(v.Tasks) == 0 {
		b.WriteString(StateLine(v.State))
		return RenderBox("", b.String())
	}

	titles := make(map[string]string, len(v.Tasks))
	for _, tv := range v.Tasks {
		titles[tv.Task.ID] = tv.Task.Title
	}

	for _, tv := range v.Tasks {
		t := tv.Task
		line := fmt.Sprintf("%s %d. %s", TaskMark(t, tv.Blocked), t.Position+1, taskTitle(t, v.Next))
		if t.AssignedTo != "" {
			line += "  " + StylePurple.Render("@"+t.AssignedTo)
		}
		if t.DueDate != nil && !t.Completed {
			line += "  " + DueDate(t.DueDate, now)
		}
		b.WriteString(line + "\n")

		if len(tv.PendingDependencies) > 0 {
			names := make([]string, 0, len(tv.PendingDependencies))
			for _, id := range tv.PendingDependencies {
				names = append(names, titles[id])
			}
			b.WriteString("     " + Dim("waiting on: "+strings.Join(names, ", ")) + "\n")
		}
		for _, st := range t.SubTasks {
			mark := "☐"
			if st.Completed {
				mark = "☑"
			}
			b.WriteString("     " + Dim(mark+" "+st.Title) + "\n")
		}
	}
	if line := StateLine(v.State); line != "" {
		b.WriteString("\n" + line)
	}
	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}

func taskTitle(t *domain.Task, next *domain.Task) string {
	switch {
	case t.Completed:
		return StyleDim.Strikethrough(true).Render(t.Title)
	case next != nil && next.ID == t.ID:
		return StyleBold.Render(t.Title) + " " + StyleGreen.Render("← next")
	default:
		return StyleFg.Render(t.Title)
	}
}

// FormatNext renders the answer to "what should I do next?".
func FormatNext(seqTitle string, next *app.NextTask) string {
	if next.Task == nil {
		line := StateLine(next.State)
		return fmt.Sprintf("%s: %s", Bold(seqTitle), line)
	}
	t := next.Task
	out := fmt.Sprintf("%s %s  %s  %s",
		StyleGreen.Render("→"), Bold(t.Title), PriorityBadge(t.Priority), Dim(FormatMinutes(t.EstimatedMin)))
	if t.AssignedTo != "" {
		out += "  " + StylePurple.Render("@"+t.AssignedTo)
	}
	return out + "\n  " + Dim("in "+seqTitle+" · "+t.ID)
}

// FormatSummary renders the result of a completion recount.
func FormatSummary(sum *app.SequenceSummary) string {
	out := fmt.Sprintf("%s  %d/%d tasks  %s",
		RenderProgress(sum.Pct, 20), sum.CompletedCount, sum.TotalCount, StatusPill(sum.Status))
	if sum.Healed {
		out += "\n" + StyleYellow.Render(fmt.Sprintf("stored progress was %.0f%%, corrected", sum.PreviousPct))
	}
	return out
}

// FormatProgressHistory renders the progress samples oldest first.
func FormatProgressHistory(samples []domain.ProgressSample) string {
	if len(samples) == 0 {
		return Dim("No progress recorded yet.")
	}
	rows := make([][]string, 0, len(samples))
	for _, p := range samples {
		rows = append(rows, []string{p.RecordedAt.Local().Format("Jan 2 15:04"), RenderProgress(p.Pct, 20)})
	}
	return RenderTable([]string{"WHEN", "PROGRESS"}, rows)
}
