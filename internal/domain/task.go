package domain

import (
	"fmt"
	"sort"
	"time"
)

const DefaultEstimatedMin = 30

type SubTask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// ReminderSettings is the per-task reminder state. An empty Strategy means
// the task follows its sequence's strategy.
type ReminderSettings struct {
	Strategy    ReminderStrategy
	LastSentAt  *time.Time
	Count       int
	SnoozeCount int
}

type Task struct {
	ID           string
	SequenceID   string
	FamilyID     string
	CreatedBy    string
	Title        string
	Description  string
	Category     string
	Priority     Priority
	DueDate      *time.Time
	AssignedTo   string
	Position     int
	Completed    bool
	CompletedAt  *time.Time
	CompletedBy  string
	EstimatedMin int
	SubTasks     []SubTask
	Dependencies []string
	Reminder     ReminderSettings
	Notes        string
	Tags         []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status is derived from Completed.
func (t *Task) Status() TaskStatus {
	if t.Completed {
		return TaskCompleted
	}
	return TaskPending
}

// MarkComplete completes the task. Returns false if it was already completed.
func (t *Task) MarkComplete(by string, now time.Time) bool {
	if t.Completed {
		return false
	}
	t.Completed = true
	t.CompletedAt = &now
	t.CompletedBy = by
	t.UpdatedAt = now
	return true
}

// Reopen clears completion. Returns false if the task was not completed.
func (t *Task) Reopen(now time.Time) bool {
	if !t.Completed {
		return false
	}
	t.Completed = false
	t.CompletedAt = nil
	t.CompletedBy = ""
	t.UpdatedAt = now
	return true
}

// SetSubTaskCompleted toggles sub-task i and rolls the result up into the
// task: completing the last open sub-task completes the task, reopening a
// sub-task of a completed task reopens it. Reports whether the task's own
// completion changed.
func (t *Task) SetSubTaskCompleted(i int, done bool, by string, now time.Time) (bool, error) {
	if i < 0 || i >= len(t.SubTasks) {
		return false, validationErrorf("sub-task index %d out of range (task has %d)", i, len(t.SubTasks))
	}
	t.SubTasks[i].Completed = done
	t.UpdatedAt = now

	if !done {
		return t.Reopen(now), nil
	}
	for _, st := range t.SubTasks {
		if !st.Completed {
			return false, nil
		}
	}
	return t.MarkComplete(by, now), nil
}

// SetDependencies replaces the dependency set, deduplicating and sorting ids.
func (t *Task) SetDependencies(ids []string) {
	t.Dependencies = NormalizeIDSet(ids)
}

// HasDependency reports whether id is in the task's dependency set.
func (t *Task) HasDependency(id string) bool {
	for _, d := range t.Dependencies {
		if d == id {
			return true
		}
	}
	return false
}

// RemoveDependency drops id from the dependency set.
func (t *Task) RemoveDependency(id string) bool {
	for i, d := range t.Dependencies {
		if d == id {
			t.Dependencies = append(t.Dependencies[:i:i], t.Dependencies[i+1:]...)
			return true
		}
	}
	return false
}

// EffectiveReminderStrategy returns the task's own strategy, else the
// sequence's, else standard.
func (t *Task) EffectiveReminderStrategy(seq *Sequence) ReminderStrategy {
	if t.Reminder.Strategy != "" {
		return t.Reminder.Strategy
	}
	if seq != nil && seq.ReminderStrategy != "" {
		return seq.ReminderStrategy
	}
	return ReminderStandard
}

// RecordReminderSent stamps a delivered reminder.
func (t *Task) RecordReminderSent(now time.Time) {
	t.Reminder.LastSentAt = &now
	t.Reminder.Count++
	t.UpdatedAt = now
}

// RecordSnooze registers a "not now" from the user. The snooze restarts the
// reminder interval.
func (t *Task) RecordSnooze(now time.Time) {
	t.Reminder.LastSentAt = &now
	t.Reminder.SnoozeCount++
	t.UpdatedAt = now
}

// DefaultTaskTitle names the n-th (1-based) task of a sequence.
func DefaultTaskTitle(n int) string {
	return fmt.Sprintf("Task %d", n)
}

// NormalizeIDSet deduplicates and sorts ids, dropping empty entries.
func NormalizeIDSet(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
