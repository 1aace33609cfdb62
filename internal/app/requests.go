package app

import (
	"time"

	"github.com/alexanderramin/taskseq/internal/domain"
)

// TaskSpec describes a task to create. In a CreateSequenceRequest, DependsOn
// names other specs by Ref; for AddTask it names existing task ids.
type TaskSpec struct {
	Ref              string
	Title            string
	Description      string
	Category         string
	Priority         domain.Priority
	DueDate          *time.Time
	AssignedTo       string
	EstimatedMin     *int
	SubTasks         []string
	DependsOn        []string
	ReminderStrategy domain.ReminderStrategy
	Notes            string
	Tags             []string
}

type CreateSequenceRequest struct {
	Title              string
	Description        string
	Category           string
	Priority           domain.Priority
	DueDate            *time.Time
	ReminderStrategy   domain.ReminderStrategy
	DelegationStrategy domain.DelegationStrategy
	Tags               []string
	// Sequential makes every task without explicit DependsOn depend on the
	// task before it.
	Sequential bool
	Tasks      []TaskSpec
}

// SequenceUpdate patches a sequence. Nil fields are left unchanged.
type SequenceUpdate struct {
	Title              *string
	Description        *string
	Category           *string
	Priority           *domain.Priority
	DueDate            *time.Time
	ClearDueDate       bool
	ReminderStrategy   *domain.ReminderStrategy
	DelegationStrategy *domain.DelegationStrategy
	Tags               *[]string
}

// TaskUpdate patches a task. Nil fields are left unchanged.
type TaskUpdate struct {
	Title            *string
	Description      *string
	Category         *string
	Priority         *domain.Priority
	DueDate          *time.Time
	ClearDueDate     bool
	AssignedTo       *string
	EstimatedMin     *int
	Dependencies     *[]string
	Completed        *bool
	ReminderStrategy *domain.ReminderStrategy
	Notes            *string
	Tags             *[]string
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.Priority == nil &&
		u.DueDate == nil && !u.ClearDueDate && u.AssignedTo == nil && u.EstimatedMin == nil &&
		u.Dependencies == nil && u.Completed == nil && u.ReminderStrategy == nil &&
		u.Notes == nil && u.Tags == nil
}
