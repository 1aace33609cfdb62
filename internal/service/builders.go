package service

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/google/uuid"
)

// newTask builds a task for seq from the given TaskSpec. Dependencies are left to the caller.
func newTask(seq *domain.Sequence, spec app.TaskSpec, creatorID string, position int, now time.Time) *domain.Task {
	t := &domain.Task{
		ID:           uuid.New().String(),
		SequenceID:   seq.ID,
		FamilyID:     seq.FamilyID,
		CreatedBy:    creatorID,
		Title:        cmp.Or(strings.TrimSpace(spec.Title), domain.DefaultTaskTitle(position+1)),
		Description:  spec.Description,
		Category:     cmp.Or(spec.Category, seq.Category),
		Priority:     cmp.Or(spec.Priority, seq.Priority, domain.PriorityMedium),
		DueDate:      spec.DueDate,
		AssignedTo:   spec.AssignedTo,
		Position:     position,
		EstimatedMin: domain.DefaultEstimatedMin,
		Reminder:     domain.ReminderSettings{Strategy: spec.ReminderStrategy},
		Notes:        spec.Notes,
		Tags:         spec.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if spec.EstimatedMin != nil {
		t.EstimatedMin = *spec.EstimatedMin
	}
	for _, title := range spec.SubTasks {
		t.SubTasks = append(t.SubTasks, domain.SubTask{Title: title})
	}
	return t
}

// buildSequenceTasks creates the tasks of a new sequence and resolves their
// DependsOn refs. A TaskSpec without DependsOn in sequential mode depends on the
// one before it.
func buildSequenceTasks(seq *domain.Sequence, creatorID string, specs []app.TaskSpec, sequential bool, now time.Time) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, len(specs))
	refs := make(map[string]string, len(specs))
	for i, spec := range specs {
		tasks[i] = newTask(seq, spec, creatorID, i, now)
		if spec.Ref == "" {
			continue
		}
		if _, dup := refs[spec.Ref]; dup {
			return nil, fmt.Errorf("%w: duplicate task ref %q", domain.ErrValidation, spec.Ref)
		}
		refs[spec.Ref] = tasks[i].ID
	}

	for i, spec := range specs {
		switch {
		case len(spec.DependsOn) > 0:
			ids := make([]string, 0, len(spec.DependsOn))
			for _, ref := range spec.DependsOn {
				id, ok := refs[ref]
				if !ok {
					return nil, &depgraph.DependencyError{Msg: fmt.Sprintf("task %q depends on unknown ref %q", tasks[i].Title, ref)}
				}
				ids = append(ids, id)
			}
			tasks[i].SetDependencies(ids)
		case sequential && i > 0:
			tasks[i].SetDependencies([]string{tasks[i-1].ID})
		}
	}

	for _, t := range tasks {
		if err := depgraph.ValidateDependencies(t, tasks); err != nil {
			return nil, err
		}
		if err := validateTask(t); err != nil {
			return nil, err
		}
	}
	if err := depgraph.ValidateAcyclic(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// applyTaskUpdate patches t. It reports whether completion state changed and
// whether the dependency set was replaced.
func applyTaskUpdate(t *domain.Task, u app.TaskUpdate, userID string, now time.Time) (completionChanged, depsChanged bool) {
	if u.Title != nil {
		t.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.ClearDueDate {
		t.DueDate = nil
	} else if u.DueDate != nil {
		due := *u.DueDate
		t.DueDate = &due
	}
	if u.AssignedTo != nil {
		t.AssignedTo = *u.AssignedTo
	}
	if u.EstimatedMin != nil {
		t.EstimatedMin = *u.EstimatedMin
	}
	if u.ReminderStrategy != nil {
		t.Reminder.Strategy = *u.ReminderStrategy
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.Tags != nil {
		t.Tags = *u.Tags
	}
	if u.Dependencies != nil {
		t.SetDependencies(*u.Dependencies)
		depsChanged = true
	}
	if u.Completed != nil {
		if *u.Completed {
			completionChanged = t.MarkComplete(userID, now)
		} else {
			completionChanged = t.Reopen(now)
		}
	}
	t.UpdatedAt = now
	return completionChanged, depsChanged
}

func validateTask(t *domain.Task) error {
	if t.Title == "" {
		return fmt.Errorf("%w: task title is required", domain.ErrValidation)
	}
	if !domain.ValidPriorities[string(t.Priority)] {
		return fmt.Errorf("%w: invalid priority %q", domain.ErrValidation, t.Priority)
	}
	if t.Reminder.Strategy != "" && !domain.ValidReminderStrategies[string(t.Reminder.Strategy)] {
		return fmt.Errorf("%w: invalid reminder strategy %q", domain.ErrValidation, t.Reminder.Strategy)
	}
	if t.EstimatedMin < 0 {
		return fmt.Errorf("%w: estimated duration must not be negative", domain.ErrValidation)
	}
	return nil
}

func validateSequence(s *domain.Sequence) error {
	if s.FamilyID == "" {
		return fmt.Errorf("%w: family id is required", domain.ErrValidation)
	}
	if !domain.ValidPriorities[string(s.Priority)] {
		return fmt.Errorf("%w: invalid priority %q", domain.ErrValidation, s.Priority)
	}
	if !domain.ValidReminderStrategies[string(s.ReminderStrategy)] {
		return fmt.Errorf("%w: invalid reminder strategy %q", domain.ErrValidation, s.ReminderStrategy)
	}
	if !domain.ValidDelegationStrategies[string(s.DelegationStrategy)] {
		return fmt.Errorf("%w: invalid delegation strategy %q", domain.ErrValidation, s.DelegationStrategy)
	}
	return nil
}

// replaceTask returns tasks with the entry sharing updated's id swapped for
// updated, appending it when absent.
func replaceTask(tasks []*domain.Task, updated *domain.Task) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks)+1)
	found := false
	for _, t := range tasks {
		if t.ID == updated.ID {
			out = append(out, updated)
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, updated)
	}
	return out
}
