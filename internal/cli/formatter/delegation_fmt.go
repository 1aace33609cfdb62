package formatter

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/domain"
)

// FormatRecommendations renders recommendations sorted by task title.
func FormatRecommendations(recs []app.Recommendation) string {
	if len(recs) == 0 {
		return Dim("No tasks needed an assignee.")
	}
	sorted := append([]app.Recommendation(nil), recs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TaskTitle < sorted[j].TaskTitle })

	rows := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, []string{
			Bold(r.TaskTitle),
			StylePurple.Render(r.AssigneeName),
			fmt.Sprintf("%.0f", r.Score),
			r.Reason,
		})
	}
	return RenderBox("Delegation", RenderTable([]string{"TASK", "ASSIGNEE", "SCORE", "WHY"}, rows))
}

// FormatMembers renders household members with their skills.
func FormatMembers(members []*domain.Member) string {
	if len(members) == 0 {
		return Dim("No household members yet. Add one with `taskseq member add`.")
	}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		skills := Dim("--")
		if len(m.Skills) > 0 {
			skills = ""
			for i, s := range m.Skills {
				if i > 0 {
					skills += ", "
				}
				skills += fmt.Sprintf("%s %d/5", s.Category, s.Level)
			}
		}
		rows = append(rows, []string{TruncID(m.ID), Bold(m.Name), string(m.Role), skills})
	}
	return RenderBox("Household", RenderTable([]string{"ID", "NAME", "ROLE", "SKILLS"}, rows))
}
