package testutil

import (
	"time"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/google/uuid"
)

// Now is the fixed clock used across fixtures and tests.
var Now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

const (
	FamilyID = "fam-1"
	UserID   = "user-1"
)

// Sequence options
type SequenceOption func(*domain.Sequence)

func WithSequenceStatus(s domain.SequenceStatus) SequenceOption {
	return func(seq *domain.Sequence) {
		seq.Status = s
	}
}

func WithSequencePriority(p domain.Priority) SequenceOption {
	return func(seq *domain.Sequence) {
		seq.Priority = p
	}
}

func WithSequenceReminder(s domain.ReminderStrategy) SequenceOption {
	return func(seq *domain.Sequence) {
		seq.ReminderStrategy = s
	}
}

func WithSequenceDelegation(s domain.DelegationStrategy) SequenceOption {
	return func(seq *domain.Sequence) {
		seq.DelegationStrategy = s
	}
}

func WithSequenceFamily(familyID string) SequenceOption {
	return func(seq *domain.Sequence) {
		seq.FamilyID = familyID
	}
}

func WithCompletionPct(pct float64) SequenceOption {
	return func(seq *domain.Sequence) {
		seq.CompletionPct = pct
	}
}

func NewTestSequence(title string, opts ...SequenceOption) *domain.Sequence {
	s := &domain.Sequence{
		ID:        uuid.New().String(),
		FamilyID:  FamilyID,
		CreatedBy: UserID,
		Title:     title,
		Category:  "Home",
		CreatedAt: Now,
		UpdatedAt: Now,
	}
	s.ApplyDefaults()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Task options
type TaskOption func(*domain.Task)

func WithPosition(p int) TaskOption {
	return func(t *domain.Task) {
		t.Position = p
	}
}

func WithCompleted() TaskOption {
	return func(t *domain.Task) {
		at := Now
		t.Completed = true
		t.CompletedAt = &at
		t.CompletedBy = UserID
	}
}

func WithDependsOn(ids ...string) TaskOption {
	return func(t *domain.Task) {
		t.SetDependencies(ids)
	}
}

func WithPriority(p domain.Priority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithCategory(c string) TaskOption {
	return func(t *domain.Task) {
		t.Category = c
	}
}

func WithAssignee(memberID string) TaskOption {
	return func(t *domain.Task) {
		t.AssignedTo = memberID
	}
}

func WithDueDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.DueDate = &d
	}
}

func WithLastReminder(at time.Time, count int) TaskOption {
	return func(t *domain.Task) {
		t.Reminder.LastSentAt = &at
		t.Reminder.Count = count
	}
}

func WithSnoozes(n int) TaskOption {
	return func(t *domain.Task) {
		t.Reminder.SnoozeCount = n
	}
}

func WithReminderStrategy(s domain.ReminderStrategy) TaskOption {
	return func(t *domain.Task) {
		t.Reminder.Strategy = s
	}
}

func WithSubTasks(titles ...string) TaskOption {
	return func(t *domain.Task) {
		for _, title := range titles {
			t.SubTasks = append(t.SubTasks, domain.SubTask{Title: title})
		}
	}
}

// NewTestTask builds a pending task belonging to seq.
func NewTestTask(seq *domain.Sequence, title string, opts ...TaskOption) *domain.Task {
	t := &domain.Task{
		ID:           uuid.New().String(),
		SequenceID:   seq.ID,
		FamilyID:     seq.FamilyID,
		CreatedBy:    UserID,
		Title:        title,
		Category:     seq.Category,
		Priority:     domain.PriorityMedium,
		EstimatedMin: domain.DefaultEstimatedMin,
		CreatedAt:    Now,
		UpdatedAt:    Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Member options
type MemberOption func(*domain.Member)

func WithRole(r domain.MemberRole) MemberOption {
	return func(m *domain.Member) {
		m.Role = r
	}
}

func WithSkill(category string, level int) MemberOption {
	return func(m *domain.Member) {
		m.Skills = append(m.Skills, domain.Skill{Category: category, Level: level})
	}
}

func NewTestMember(name string, opts ...MemberOption) *domain.Member {
	m := &domain.Member{
		ID:        uuid.New().String(),
		FamilyID:  FamilyID,
		Name:      name,
		Role:      domain.RoleParent,
		CreatedAt: Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
