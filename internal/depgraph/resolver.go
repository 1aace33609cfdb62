// Package depgraph gates tasks on their dependency sets: which task of a
// sequence is actionable next, whether a task is blocked, and whether a
// proposed dependency set is acceptable.
package depgraph

import (
	"sort"

	"github.com/alexanderramin/taskseq/internal/domain"
)

// State classifies a sequence's task list for a caller asking "what next?".
type State string

const (
	// StateActionable means Resolution.Next is set.
	StateActionable State = "actionable"
	// StateComplete means every task is completed.
	StateComplete State = "complete"
	// StateDeadlocked means incomplete tasks remain but every one is blocked.
	StateDeadlocked State = "deadlocked"
	// StateEmpty means the sequence has no tasks.
	StateEmpty State = "empty"
)

type Resolution struct {
	Next  *domain.Task
	State State
}

// IsBlocked reports whether any dependency of task is incomplete or refers to
// a task that is not in all. Unknown ids count as unsatisfied.
func IsBlocked(task *domain.Task, all []*domain.Task) bool {
	if len(task.Dependencies) == 0 {
		return false
	}
	byID := indexByID(all)
	return blocked(task, byID)
}

// PendingDependencies returns the ids of task's unsatisfied dependencies in
// set order.
func PendingDependencies(task *domain.Task, all []*domain.Task) []string {
	byID := indexByID(all)
	var pending []string
	for _, dep := range task.Dependencies {
		t, ok := byID[dep]
		if !ok || !t.Completed {
			pending = append(pending, dep)
		}
	}
	return pending
}

// NextActionable returns the first incomplete, unblocked task in position
// order, or nil.
func NextActionable(tasks []*domain.Task) *domain.Task {
	return Resolve(tasks).Next
}

// Actionable returns every incomplete, unblocked task in position order.
func Actionable(tasks []*domain.Task) []*domain.Task {
	byID := indexByID(tasks)
	var out []*domain.Task
	for _, t := range byPosition(tasks) {
		if !t.Completed && !blocked(t, byID) {
			out = append(out, t)
		}
	}
	return out
}

// Resolve is NextActionable plus the reason when nothing is actionable.
func Resolve(tasks []*domain.Task) Resolution {
	if len(tasks) == 0 {
		return Resolution{State: StateEmpty}
	}
	byID := indexByID(tasks)
	incomplete := 0
	for _, t := range byPosition(tasks) {
		if t.Completed {
			continue
		}
		incomplete++
		if !blocked(t, byID) {
			return Resolution{Next: t, State: StateActionable}
		}
	}
	if incomplete == 0 {
		return Resolution{State: StateComplete}
	}
	return Resolution{State: StateDeadlocked}
}

// SequentialDependencies returns, for each id in order, the dependency set
// implied by sequential mode: every task depends on the one before it.
func SequentialDependencies(ids []string) [][]string {
	out := make([][]string, len(ids))
	for i := 1; i < len(ids); i++ {
		out[i] = []string{ids[i-1]}
	}
	return out
}

func blocked(task *domain.Task, byID map[string]*domain.Task) bool {
	for _, dep := range task.Dependencies {
		t, ok := byID[dep]
		if !ok || !t.Completed {
			return true
		}
	}
	return false
}

func indexByID(tasks []*domain.Task) map[string]*domain.Task {
	byID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	return byID
}

// byPosition returns a copy of tasks sorted by Position, keeping input order
// for equal positions.
func byPosition(tasks []*domain.Task) []*domain.Task {
	sorted := make([]*domain.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return sorted
}
