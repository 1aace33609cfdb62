package service

import (
	"context"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/importer"
)

type SequenceService interface {
	CreateSequence(ctx context.Context, familyID, creatorID string, req app.CreateSequenceRequest) (string, error)
	Get(ctx context.Context, id string) (*app.SequenceView, error)
	ListByFamily(ctx context.Context, familyID string, includeArchived bool) ([]app.SequenceOverview, error)
	Update(ctx context.Context, id, userID string, u app.SequenceUpdate) (*domain.Sequence, error)
	Archive(ctx context.Context, id, userID string) error
	Unarchive(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
}

type TaskService interface {
	Get(ctx context.Context, id string) (*domain.Task, error)
	AddTask(ctx context.Context, sequenceID, userID string, spec app.TaskSpec) (*domain.Task, error)
	RemoveTask(ctx context.Context, sequenceID, taskID, userID string) error
	UpdateTask(ctx context.Context, taskID, userID string, u app.TaskUpdate) (*domain.Task, error)
	SetCompleted(ctx context.Context, taskID, userID string, done bool) (*domain.Task, error)
	SetSubTaskCompleted(ctx context.Context, taskID string, index int, done bool, userID string) (*domain.Task, error)
	ReorderTasks(ctx context.Context, sequenceID, userID string, orderedIDs []string) error
}

type NextTaskService interface {
	NextActionableTask(ctx context.Context, sequenceID string) (*domain.Task, error)
	Resolve(ctx context.Context, sequenceID string) (*app.NextTask, error)
}

type CompletionService interface {
	RecomputeSequence(ctx context.Context, sequenceID string) (*app.SequenceSummary, error)
	ProgressHistory(ctx context.Context, sequenceID string) ([]domain.ProgressSample, error)
}

type ReminderService interface {
	EvaluateReminders(ctx context.Context, sequenceID string, now time.Time) ([]app.ReminderToSend, error)
	EvaluateFamily(ctx context.Context, familyID string, now time.Time) ([]app.ReminderToSend, error)
	Acknowledge(ctx context.Context, taskID string, now time.Time) error
	Snooze(ctx context.Context, taskID string, now time.Time) error
}

type DelegationService interface {
	Recommend(ctx context.Context, familyID string, taskIDs []string, members []*domain.Member) (map[string]app.Recommendation, error)
	Apply(ctx context.Context, taskID, assigneeID, userID string) (*domain.Task, error)
	AutoAssign(ctx context.Context, sequenceID, userID string) ([]app.Recommendation, error)
}

type MemberService interface {
	Create(ctx context.Context, m *domain.Member) error
	Get(ctx context.Context, id string) (*domain.Member, error)
	List(ctx context.Context, familyID string) ([]*domain.Member, error)
	SetSkill(ctx context.Context, memberID string, skill domain.Skill) (*domain.Member, error)
	Delete(ctx context.Context, id string) error
}

type ImportService interface {
	ImportFile(ctx context.Context, path, familyID, creatorID string) (*app.ImportResult, error)
	Import(ctx context.Context, file *importer.SequenceFile, familyID, creatorID string) (*app.ImportResult, error)
}
