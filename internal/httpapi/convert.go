package httpapi

import (
	"fmt"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/importer"
)

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := importer.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid due_date %q", domain.ErrValidation, s)
	}
	return &t, nil
}

func (b taskBody) spec() (app.TaskSpec, error) {
	priority, err := domain.ParsePriority(b.Priority)
	if err != nil {
		return app.TaskSpec{}, err
	}
	strategy, err := domain.ParseReminderStrategy(b.ReminderStrategy)
	if err != nil {
		return app.TaskSpec{}, err
	}
	due, err := parseDue(b.DueDate)
	if err != nil {
		return app.TaskSpec{}, err
	}
	return app.TaskSpec{
		Title:            b.Title,
		Description:      b.Description,
		Category:         b.Category,
		Priority:         priority,
		DueDate:          due,
		AssignedTo:       b.AssignedTo,
		EstimatedMin:     b.EstimatedMin,
		SubTasks:         b.SubTasks,
		DependsOn:        b.DependsOn,
		ReminderStrategy: strategy,
		Notes:            b.Notes,
		Tags:             b.Tags,
	}, nil
}

func (p taskPatch) update() (app.TaskUpdate, error) {
	u := app.TaskUpdate{
		Title:        p.Title,
		Description:  p.Description,
		Category:     p.Category,
		AssignedTo:   p.AssignedTo,
		EstimatedMin: p.EstimatedMin,
		Dependencies: p.Dependencies,
		Completed:    p.Completed,
		Notes:        p.Notes,
		Tags:         p.Tags,
	}
	if p.Priority != nil {
		priority, err := domain.ParsePriority(*p.Priority)
		if err != nil {
			return u, err
		}
		u.Priority = &priority
	}
	if p.ReminderStrategy != nil {
		strategy, err := domain.ParseReminderStrategy(*p.ReminderStrategy)
		if err != nil {
			return u, err
		}
		u.ReminderStrategy = &strategy
	}
	if p.DueDate != nil {
		due, err := parseDue(*p.DueDate)
		if err != nil {
			return u, err
		}
		u.DueDate = due
		u.ClearDueDate = due == nil
	}
	return u, nil
}

func (p sequencePatch) update() (app.SequenceUpdate, error) {
	u := app.SequenceUpdate{
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Tags:        p.Tags,
	}
	if p.Priority != nil {
		priority, err := domain.ParsePriority(*p.Priority)
		if err != nil {
			return u, err
		}
		u.Priority = &priority
	}
	if p.ReminderStrategy != nil {
		strategy, err := domain.ParseReminderStrategy(*p.ReminderStrategy)
		if err != nil {
			return u, err
		}
		u.ReminderStrategy = &strategy
	}
	if p.DelegationStrategy != nil {
		strategy, err := domain.ParseDelegationStrategy(*p.DelegationStrategy)
		if err != nil {
			return u, err
		}
		u.DelegationStrategy = &strategy
	}
	if p.DueDate != nil {
		due, err := parseDue(*p.DueDate)
		if err != nil {
			return u, err
		}
		u.DueDate = due
		u.ClearDueDate = due == nil
	}
	return u, nil
}
