package repository

import (
	"context"

	"github.com/alexanderramin/taskseq/internal/domain"
)

// SequenceRepo persists sequences and their progress history. A loaded
// Sequence carries its TaskIDs in position order.
type SequenceRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Sequence, error)
	Save(ctx context.Context, s *domain.Sequence) error
	Delete(ctx context.Context, id string) error
	ListByFamily(ctx context.Context, familyID string, includeArchived bool) ([]*domain.Sequence, error)
	AppendProgress(ctx context.Context, sample domain.ProgressSample) error
	ListProgress(ctx context.Context, sequenceID string) ([]domain.ProgressSample, error)
	LatestProgress(ctx context.Context, sequenceID string) (*domain.ProgressSample, error)
}

// TaskRepo persists tasks together with their dependency sets.
type TaskRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Save(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	ListBySequence(ctx context.Context, sequenceID string) ([]*domain.Task, error)
	// ListOpenByFamily returns incomplete tasks of non-archived sequences.
	ListOpenByFamily(ctx context.Context, familyID string) ([]*domain.Task, error)
	// ListByFamily returns every task of the family, completed or not.
	ListByFamily(ctx context.Context, familyID string) ([]*domain.Task, error)
}

type MemberRepo interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	ListByFamily(ctx context.Context, familyID string) ([]*domain.Member, error)
	Update(ctx context.Context, m *domain.Member) error
	Delete(ctx context.Context, id string) error
}
