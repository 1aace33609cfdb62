package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/reminder"
	"github.com/alexanderramin/taskseq/internal/repository"
)

// ReminderScope selects which tasks of a sequence are reminder candidates.
type ReminderScope string

const (
	// ScopeNext considers only the sequence's next actionable task. Default.
	ScopeNext ReminderScope = "next"
	// ScopeActionable considers every incomplete, unblocked task.
	ScopeActionable ReminderScope = "actionable"
)

// ParseReminderScope accepts "next", "actionable" or "" (next).
func ParseReminderScope(s string) (ReminderScope, error) {
	switch ReminderScope(s) {
	case "", ScopeNext:
		return ScopeNext, nil
	case ScopeActionable:
		return ScopeActionable, nil
	}
	return "", fmt.Errorf("%w: invalid reminder scope %q (want next or actionable)", domain.ErrValidation, s)
}

type reminderService struct {
	sequences repository.SequenceRepo
	tasks     repository.TaskRepo
	uow       db.UnitOfWork
	scope     ReminderScope
	observer  UseCaseObserver
}

func NewReminderService(
	sequences repository.SequenceRepo,
	tasks repository.TaskRepo,
	uow db.UnitOfWork,
	scope ReminderScope,
	observers ...UseCaseObserver,
) ReminderService {
	if scope == "" {
		scope = ScopeNext
	}
	return &reminderService{
		sequences: sequences,
		tasks:     tasks,
		uow:       uow,
		scope:     scope,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// EvaluateReminders lists the reminders due now for one sequence. Nothing is
// due for a sequence that is not active. It does not record delivery; callers
// Acknowledge what they actually sent.
func (s *reminderService) EvaluateReminders(ctx context.Context, sequenceID string, now time.Time) (out []app.ReminderToSend, err error) {
	uc := startUseCase(s.observer, "evaluate-reminders", map[string]any{"sequence_id": sequenceID})
	defer func() { uc.end(ctx, err) }()

	seq, err := s.sequences.GetByID(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	out, err = s.evaluate(ctx, seq, now)
	uc.fields["due"] = len(out)
	return out, err
}

func (s *reminderService) EvaluateFamily(ctx context.Context, familyID string, now time.Time) (out []app.ReminderToSend, err error) {
	uc := startUseCase(s.observer, "evaluate-family-reminders", map[string]any{"family_id": familyID})
	defer func() { uc.end(ctx, err) }()

	seqs, err := s.sequences.ListByFamily(ctx, familyID, false)
	if err != nil {
		return nil, err
	}
	for _, seq := range seqs {
		due, err := s.evaluate(ctx, seq, now)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", seq.ID, err)
		}
		out = append(out, due...)
	}
	uc.fields["sequences"] = len(seqs)
	uc.fields["due"] = len(out)
	return out, nil
}

func (s *reminderService) evaluate(ctx context.Context, seq *domain.Sequence, now time.Time) ([]app.ReminderToSend, error) {
	if !seq.IsActive() {
		return nil, nil
	}
	tasks, err := s.tasks.ListBySequence(ctx, seq.ID)
	if err != nil {
		return nil, err
	}

	candidates := depgraph.Actionable(tasks)
	if s.scope == ScopeNext && len(candidates) > 1 {
		candidates = candidates[:1]
	}

	var out []app.ReminderToSend
	for _, t := range candidates {
		if !reminder.ShouldRemind(t, seq, now) {
			continue
		}
		out = append(out, app.ReminderToSend{
			TaskID:        t.ID,
			SequenceID:    seq.ID,
			SequenceTitle: seq.Title,
			TaskTitle:     t.Title,
			AssignedTo:    t.AssignedTo,
			Message:       reminder.ComposeMessage(t, seq, now),
			Priority:      t.Priority,
			DueDate:       t.DueDate,
		})
	}
	return out, nil
}

// Acknowledge records that a reminder for the task was delivered at now.
func (s *reminderService) Acknowledge(ctx context.Context, taskID string, now time.Time) (err error) {
	uc := startUseCase(s.observer, "acknowledge-reminder", map[string]any{"task_id": taskID})
	defer func() { uc.end(ctx, err) }()

	return s.updateTask(ctx, taskID, func(t *domain.Task) { t.RecordReminderSent(now) })
}

// Snooze postpones the task's reminders by restarting its interval at now.
func (s *reminderService) Snooze(ctx context.Context, taskID string, now time.Time) (err error) {
	uc := startUseCase(s.observer, "snooze-reminder", map[string]any{"task_id": taskID})
	defer func() { uc.end(ctx, err) }()

	return s.updateTask(ctx, taskID, func(t *domain.Task) { t.RecordSnooze(now) })
}

func (s *reminderService) updateTask(ctx context.Context, taskID string, mutate func(*domain.Task)) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		t, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		mutate(t)
		return txTasks.Save(ctx, t)
	})
}
