package delegation

import (
	"strings"

	"github.com/alexanderramin/taskseq/internal/domain"
)

// Load is the family's current open-task distribution, counted over
// assigned incomplete tasks.
type Load struct {
	total            int
	byMember         map[string]int
	byCategory       map[string]int
	byMemberCategory map[string]map[string]int
}

// NewLoad tallies open, assigned tasks. Completed or unassigned tasks are skipped.
func NewLoad(open []*domain.Task) *Load {
	l := &Load{
		byMember:         make(map[string]int),
		byCategory:       make(map[string]int),
		byMemberCategory: make(map[string]map[string]int),
	}
	for _, t := range open {
		if t.Completed || t.AssignedTo == "" {
			continue
		}
		cat := categoryKey(t.Category)
		l.total++
		l.byMember[t.AssignedTo]++
		l.byCategory[cat]++
		if l.byMemberCategory[t.AssignedTo] == nil {
			l.byMemberCategory[t.AssignedTo] = make(map[string]int)
		}
		l.byMemberCategory[t.AssignedTo][cat]++
	}
	return l
}

// OpenCount is the member's number of incomplete assigned tasks.
func (l *Load) OpenCount(memberID string) int {
	return l.byMember[memberID]
}

// History is per-member, per-category completion history.
type History struct {
	assigned  map[string]map[string]int
	completed map[string]map[string]int
}

// NewHistory tallies every assigned task, completed or not.
func NewHistory(tasks []*domain.Task) *History {
	h := &History{
		assigned:  make(map[string]map[string]int),
		completed: make(map[string]map[string]int),
	}
	for _, t := range tasks {
		if t.AssignedTo == "" {
			continue
		}
		cat := categoryKey(t.Category)
		if h.assigned[t.AssignedTo] == nil {
			h.assigned[t.AssignedTo] = make(map[string]int)
			h.completed[t.AssignedTo] = make(map[string]int)
		}
		h.assigned[t.AssignedTo][cat]++
		if t.Completed {
			h.completed[t.AssignedTo][cat]++
		}
	}
	return h
}

// WorkloadBalance is 100 minus the member's share of all open assigned tasks.
func WorkloadBalance(memberID string, load *Load) float64 {
	if load.total == 0 {
		return neutralScore
	}
	share := 100 * float64(load.byMember[memberID]) / float64(load.total)
	return 100 - share
}

// CategoryBalance is 100 minus the member's share of open tasks in category.
func CategoryBalance(memberID, category string, load *Load) float64 {
	cat := categoryKey(category)
	total := load.byCategory[cat]
	if total == 0 {
		return neutralScore
	}
	share := 100 * float64(load.byMemberCategory[memberID][cat]) / float64(total)
	return 100 - share
}

// Availability buckets the member's open task count.
func Availability(openCount int) float64 {
	switch {
	case openCount > 10:
		return 10
	case openCount > 5:
		return 30
	case openCount > 2:
		return 50
	default:
		return 80
	}
}

// SkillMatch scales the level of the member's matching skill to 0–100.
func SkillMatch(m *domain.Member, category string) float64 {
	skill, ok := m.SkillFor(category)
	if !ok {
		return neutralScore
	}
	level := min(max(skill.Level, 0), domain.MaxSkillLevel)
	return float64(level) * 20
}

// HistoricalSuccess is the completed fraction of the member's past tasks in
// category, scaled to 0–100.
func HistoricalSuccess(memberID, category string, h *History) float64 {
	cat := categoryKey(category)
	assigned := h.assigned[memberID][cat]
	if assigned == 0 {
		return neutralScore
	}
	return 100 * float64(h.completed[memberID][cat]) / float64(assigned)
}

func categoryKey(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
