package domain

import (
	"cmp"
	"time"
)

const (
	DefaultSequenceTitle    = "Untitled Sequence"
	DefaultSequenceCategory = "Uncategorized"
)

// Sequence is one multi-step family project. TaskIDs holds the owned tasks in
// position order; CompletionPct is derived from them and never edited directly.
type Sequence struct {
	ID                 string
	FamilyID           string
	CreatedBy          string
	Title              string
	Description        string
	Category           string
	Status             SequenceStatus
	CompletionPct      float64
	DueDate            *time.Time
	Priority           Priority
	ReminderStrategy   ReminderStrategy
	DelegationStrategy DelegationStrategy
	TaskIDs            []string
	Tags               []string
	LastUpdatedBy      string
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProgressSample is one entry of a sequence's append-only progress history.
type ProgressSample struct {
	SequenceID string
	RecordedAt time.Time
	Pct        float64
}

// ApplyDefaults fills unset attributes with creation defaults.
func (s *Sequence) ApplyDefaults() {
	s.Title = cmp.Or(s.Title, DefaultSequenceTitle)
	s.Category = cmp.Or(s.Category, DefaultSequenceCategory)
	if s.Status == "" {
		s.Status = SequenceActive
	}
	if s.Priority == "" {
		s.Priority = PriorityMedium
	}
	if s.ReminderStrategy == "" {
		s.ReminderStrategy = ReminderStandard
	}
	if s.DelegationStrategy == "" {
		s.DelegationStrategy = DelegationManual
	}
}

// IsActive reports whether the sequence participates in reminders and
// family listings of actionable work.
func (s *Sequence) IsActive() bool {
	return s.Status == SequenceActive
}

// HasTask reports whether id is one of the sequence's tasks.
func (s *Sequence) HasTask(id string) bool {
	for _, tid := range s.TaskIDs {
		if tid == id {
			return true
		}
	}
	return false
}

// RemoveTaskID drops id from the ordered task list. Returns false if absent.
func (s *Sequence) RemoveTaskID(id string) bool {
	for i, tid := range s.TaskIDs {
		if tid == id {
			s.TaskIDs = append(s.TaskIDs[:i:i], s.TaskIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Touch records who last changed the sequence and when.
func (s *Sequence) Touch(userID string, now time.Time) {
	if userID != "" {
		s.LastUpdatedBy = userID
	}
	s.UpdatedAt = now
}
