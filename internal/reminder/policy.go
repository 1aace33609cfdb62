// Package reminder decides when a task is due for another reminder and
// composes the reminder text. Nothing here mutates a task; callers stamp
// the reminder once it has been delivered.
package reminder

import (
	"time"

	"github.com/alexanderramin/taskseq/internal/domain"
)

const (
	overdueInterval = 2 * time.Hour
	dueSoonCap      = 2 * time.Hour
	dueSoonWindow   = 24 * time.Hour
	dueLaterCap     = 4 * time.Hour
	dueLaterWindow  = 48 * time.Hour

	snoozeWideningThreshold  = 2
	snoozeWideningFactor     = 1.5
	fatigueWideningThreshold = 5
	fatigueWideningFactor    = 1.3

	minimalInterval         = 24 * time.Hour
	minimalCriticalInterval = 12 * time.Hour
)

// standardBase and adaptiveBase map priority to the base interval. Unknown
// priorities use the medium entry.
var (
	standardBase = map[domain.Priority]time.Duration{
		domain.PriorityCritical: 4 * time.Hour,
		domain.PriorityHigh:     8 * time.Hour,
		domain.PriorityMedium:   24 * time.Hour,
		domain.PriorityLow:      48 * time.Hour,
	}
	adaptiveBase = map[domain.Priority]time.Duration{
		domain.PriorityCritical: 6 * time.Hour,
		domain.PriorityHigh:     12 * time.Hour,
		domain.PriorityMedium:   24 * time.Hour,
		domain.PriorityLow:      48 * time.Hour,
	}
)

// ShouldRemind reports whether a reminder for task is due at now. A completed
// task never reminds; a task that was never reminded always does.
func ShouldRemind(task *domain.Task, seq *domain.Sequence, now time.Time) bool {
	if task.Completed {
		return false
	}
	if task.Reminder.LastSentAt == nil {
		return true
	}
	return now.Sub(*task.Reminder.LastSentAt) >= Interval(task, seq, now)
}

// NextReminderAt returns when the next reminder becomes due, or nil for a
// completed task. A never-reminded task is due at now.
func NextReminderAt(task *domain.Task, seq *domain.Sequence, now time.Time) *time.Time {
	if task.Completed {
		return nil
	}
	if task.Reminder.LastSentAt == nil {
		return &now
	}
	at := task.Reminder.LastSentAt.Add(Interval(task, seq, now))
	return &at
}

// Interval is the minimum spacing between reminders for task at now under
// its effective strategy.
func Interval(task *domain.Task, seq *domain.Sequence, now time.Time) time.Duration {
	switch task.EffectiveReminderStrategy(seq) {
	case domain.ReminderAdaptive:
		return adaptiveInterval(task, now)
	case domain.ReminderMinimal:
		return minimalIntervalFor(task)
	default:
		return standardInterval(task, now)
	}
}

func standardInterval(task *domain.Task, now time.Time) time.Duration {
	return applyDueDateCap(baseFor(standardBase, task.Priority), task.DueDate, now)
}

func adaptiveInterval(task *domain.Task, now time.Time) time.Duration {
	base := baseFor(adaptiveBase, task.Priority)
	if task.Reminder.SnoozeCount > snoozeWideningThreshold {
		base = scale(base, snoozeWideningFactor)
	}
	if task.Reminder.Count > fatigueWideningThreshold {
		base = scale(base, fatigueWideningFactor)
	}
	return applyDueDateCap(base, task.DueDate, now)
}

func minimalIntervalFor(task *domain.Task) time.Duration {
	if task.Priority == domain.PriorityCritical {
		return minimalCriticalInterval
	}
	return minimalInterval
}

// applyDueDateCap tightens base as the due date approaches: overdue forces
// the shortest interval, inside 24h and 48h the interval is capped.
func applyDueDateCap(base time.Duration, due *time.Time, now time.Time) time.Duration {
	if due == nil {
		return base
	}
	until := due.Sub(now)
	switch {
	case until < 0:
		return overdueInterval
	case until < dueSoonWindow:
		return min(base, dueSoonCap)
	case until < dueLaterWindow:
		return min(base, dueLaterCap)
	default:
		return base
	}
}

func baseFor(table map[domain.Priority]time.Duration, p domain.Priority) time.Duration {
	if d, ok := table[p]; ok {
		return d
	}
	return table[domain.PriorityMedium]
}

func scale(d time.Duration, factor float64) time.Duration {
	return time.Duration(float64(d) * factor)
}
