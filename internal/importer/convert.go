package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/domain"
)

// ToRequest turns a definition into a creation request. Call
// ValidateSequenceFile first; ToRequest only reports the first problem.
func ToRequest(file *SequenceFile) (app.CreateSequenceRequest, error) {
	due, err := optionalDate("due_date", file.DueDate)
	if err != nil {
		return app.CreateSequenceRequest{}, err
	}

	req := app.CreateSequenceRequest{
		Title:              file.Title,
		Description:        file.Description,
		Category:           file.Category,
		Priority:           domain.Priority(file.Priority),
		DueDate:            due,
		ReminderStrategy:   domain.ReminderStrategy(file.ReminderStrategy),
		DelegationStrategy: domain.DelegationStrategy(file.DelegationStrategy),
		Tags:               file.Tags,
		Sequential:         file.Sequential,
		Tasks:              make([]app.TaskSpec, 0, len(file.Tasks)),
	}

	for i, t := range file.Tasks {
		taskDue, err := optionalDate(fmt.Sprintf("tasks[%d].due_date", i), t.DueDate)
		if err != nil {
			return app.CreateSequenceRequest{}, err
		}
		req.Tasks = append(req.Tasks, app.TaskSpec{
			Ref:              t.Ref,
			Title:            t.Title,
			Description:      t.Description,
			Category:         t.Category,
			Priority:         domain.Priority(t.Priority),
			DueDate:          taskDue,
			AssignedTo:       t.AssignedTo,
			EstimatedMin:     t.EstimatedMin,
			SubTasks:         t.SubTasks,
			DependsOn:        t.DependsOn,
			ReminderStrategy: domain.ReminderStrategy(t.ReminderStrategy),
			Notes:            t.Notes,
			Tags:             t.Tags,
		})
	}
	return req, nil
}

// DependencyCount is the number of explicit plus implied dependency edges.
func DependencyCount(file *SequenceFile) int {
	n := 0
	for i, t := range file.Tasks {
		switch {
		case len(t.DependsOn) > 0:
			n += len(domain.NormalizeIDSet(t.DependsOn))
		case file.Sequential && i > 0:
			n++
		}
	}
	return n
}

func optionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &t, nil
}
