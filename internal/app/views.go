package app

import (
	"time"

	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
)

type SequenceSummary struct {
	SequenceID     string
	CompletedCount int
	TotalCount     int
	Pct            float64
	Status         domain.SequenceStatus
	CompletedAt    *time.Time
	// Healed is set when the stored percentage disagreed with the recount.
	Healed      bool
	PreviousPct float64
}

type TaskView struct {
	Task                *domain.Task
	Blocked             bool
	PendingDependencies []string
}

type SequenceView struct {
	Sequence *domain.Sequence
	Tasks    []TaskView
	Next     *domain.Task
	State    depgraph.State
}

type SequenceOverview struct {
	Sequence *domain.Sequence
	Next     *domain.Task
	State    depgraph.State
}

// NextTask answers "what should I work on next?" for one sequence. Task is
// nil unless State is depgraph.StateActionable.
type NextTask struct {
	SequenceID string
	Task       *domain.Task
	State      depgraph.State
}

type ReminderToSend struct {
	TaskID        string
	SequenceID    string
	SequenceTitle string
	TaskTitle     string
	AssignedTo    string
	Message       string
	Priority      domain.Priority
	DueDate       *time.Time
}

type Recommendation struct {
	TaskID       string
	TaskTitle    string
	AssigneeID   string
	AssigneeName string
	Score        float64
	Factor       string
	Reason       string
}

type ImportResult struct {
	SequenceID      string
	Title           string
	TaskCount       int
	DependencyCount int
}
