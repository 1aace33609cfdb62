package importer

import (
	"cmp"
	"fmt"
	"time"

	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
)

// ValidateSequenceFile checks a definition before conversion and returns
// every problem found.
func ValidateSequenceFile(file *SequenceFile) []error {
	var errs []error

	errs = append(errs, validateEnum("priority", file.Priority, domain.ValidPriorities)...)
	errs = append(errs, validateEnum("reminder_strategy", file.ReminderStrategy, domain.ValidReminderStrategies)...)
	errs = append(errs, validateEnum("delegation_strategy", file.DelegationStrategy, domain.ValidDelegationStrategies)...)
	errs = append(errs, validateOptionalDate("due_date", file.DueDate)...)

	refs := make(map[string]bool)
	for i, t := range file.Tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		if t.Ref != "" {
			if refs[t.Ref] {
				errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, t.Ref))
			}
			refs[t.Ref] = true
		}
		errs = append(errs, validateEnum(prefix+".priority", t.Priority, domain.ValidPriorities)...)
		errs = append(errs, validateEnum(prefix+".reminder_strategy", t.ReminderStrategy, domain.ValidReminderStrategies)...)
		errs = append(errs, validateOptionalDate(prefix+".due_date", t.DueDate)...)
		if t.EstimatedMin != nil && *t.EstimatedMin < 0 {
			errs = append(errs, fmt.Errorf("%s.estimated_min must not be negative", prefix))
		}
	}

	depErrs := validateDependsOn(file.Tasks, refs)
	errs = append(errs, depErrs...)
	if len(depErrs) == 0 {
		errs = append(errs, detectCycles(file)...)
	}
	return errs
}

func validateDependsOn(tasks []TaskImport, refs map[string]bool) []error {
	var errs []error
	for i, t := range tasks {
		for _, ref := range t.DependsOn {
			switch {
			case ref == t.Ref && ref != "":
				errs = append(errs, fmt.Errorf("tasks[%d].depends_on: self-dependency %q", i, ref))
			case !refs[ref]:
				errs = append(errs, fmt.Errorf("tasks[%d].depends_on: ref %q not found in tasks", i, ref))
			}
		}
	}
	return errs
}

// detectCycles runs the resolver's acyclicity check over the file's refs.
func detectCycles(file *SequenceFile) []error {
	tasks := make([]*domain.Task, len(file.Tasks))
	for i, t := range file.Tasks {
		tasks[i] = &domain.Task{
			ID:       cmp.Or(t.Ref, fmt.Sprintf("#%d", i)),
			Title:    cmp.Or(t.Title, t.Ref),
			Position: i,
		}
	}
	for i, t := range file.Tasks {
		switch {
		case len(t.DependsOn) > 0:
			tasks[i].SetDependencies(t.DependsOn)
		case file.Sequential && i > 0:
			tasks[i].SetDependencies([]string{tasks[i-1].ID})
		}
	}
	if err := depgraph.ValidateAcyclic(tasks); err != nil {
		return []error{err}
	}
	return nil
}

func validateEnum(field, value string, valid map[string]bool) []error {
	if value == "" || valid[value] {
		return nil
	}
	return []error{fmt.Errorf("%s: invalid value %q", field, value)}
}

func validateOptionalDate(field string, dateStr *string) []error {
	if dateStr == nil || *dateStr == "" {
		return nil
	}
	if _, err := ParseDate(*dateStr); err != nil {
		return []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD or RFC 3339)", field, *dateStr)}
	}
	return nil
}

// ParseDate accepts a calendar date (midnight UTC) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
