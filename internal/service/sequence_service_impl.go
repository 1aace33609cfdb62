package service

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/repository"
	"github.com/google/uuid"
)

type sequenceService struct {
	sequences  repository.SequenceRepo
	tasks      repository.TaskRepo
	uow        db.UnitOfWork
	completion CompletionService
	observer   UseCaseObserver
}

func NewSequenceService(
	sequences repository.SequenceRepo,
	tasks repository.TaskRepo,
	uow db.UnitOfWork,
	completion CompletionService,
	observers ...UseCaseObserver,
) SequenceService {
	return &sequenceService{
		sequences:  sequences,
		tasks:      tasks,
		uow:        uow,
		completion: completion,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *sequenceService) CreateSequence(ctx context.Context, familyID, creatorID string, req app.CreateSequenceRequest) (id string, err error) {
	uc := startUseCase(s.observer, "create-sequence", map[string]any{"family_id": familyID})
	defer func() { uc.end(ctx, err) }()

	now := time.Now().UTC()
	seq := &domain.Sequence{
		ID:                 uuid.New().String(),
		FamilyID:           familyID,
		CreatedBy:          creatorID,
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		Category:           strings.TrimSpace(req.Category),
		Priority:           req.Priority,
		DueDate:            req.DueDate,
		ReminderStrategy:   req.ReminderStrategy,
		DelegationStrategy: req.DelegationStrategy,
		Tags:               req.Tags,
		LastUpdatedBy:      creatorID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	seq.ApplyDefaults()
	if err = validateSequence(seq); err != nil {
		return "", err
	}

	tasks, err := buildSequenceTasks(seq, creatorID, req.Tasks, req.Sequential, now)
	if err != nil {
		return "", err
	}
	for _, t := range tasks {
		seq.TaskIDs = append(seq.TaskIDs, t.ID)
	}
	uc.fields["sequence_id"] = seq.ID
	uc.fields["task_count"] = len(tasks)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		if err := txSequences.Save(ctx, seq); err != nil {
			return fmt.Errorf("creating sequence: %w", err)
		}
		for _, t := range tasks {
			if err := txTasks.Save(ctx, t); err != nil {
				return fmt.Errorf("creating task '%s': %w", t.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if _, err = s.completion.RecomputeSequence(afterMutation(ctx, uc.name), seq.ID); err != nil {
		return seq.ID, fmt.Errorf("recomputing sequence: %w", err)
	}
	return seq.ID, nil
}

func (s *sequenceService) Get(ctx context.Context, id string) (*app.SequenceView, error) {
	seq, err := s.sequences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListBySequence(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &app.SequenceView{Sequence: seq, Tasks: make([]app.TaskView, 0, len(tasks))}
	for _, t := range tasks {
		pending := depgraph.PendingDependencies(t, tasks)
		view.Tasks = append(view.Tasks, app.TaskView{
			Task:                t,
			Blocked:             len(pending) > 0,
			PendingDependencies: pending,
		})
	}
	res := depgraph.Resolve(tasks)
	view.Next = res.Next
	view.State = res.State
	return view, nil
}

func (s *sequenceService) ListByFamily(ctx context.Context, familyID string, includeArchived bool) ([]app.SequenceOverview, error) {
	seqs, err := s.sequences.ListByFamily(ctx, familyID, includeArchived)
	if err != nil {
		return nil, err
	}
	out := make([]app.SequenceOverview, 0, len(seqs))
	for _, seq := range seqs {
		tasks, err := s.tasks.ListBySequence(ctx, seq.ID)
		if err != nil {
			return nil, fmt.Errorf("listing tasks of %s: %w", seq.ID, err)
		}
		res := depgraph.Resolve(tasks)
		out = append(out, app.SequenceOverview{Sequence: seq, Next: res.Next, State: res.State})
	}
	return out, nil
}

func (s *sequenceService) Update(ctx context.Context, id, userID string, u app.SequenceUpdate) (seq *domain.Sequence, err error) {
	uc := startUseCase(s.observer, "update-sequence", map[string]any{"sequence_id": id})
	defer func() { uc.end(ctx, err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)

		var txErr error
		seq, txErr = txSequences.GetByID(ctx, id)
		if txErr != nil {
			return txErr
		}
		applySequenceUpdate(seq, u)
		if seq.Title == "" {
			return fmt.Errorf("%w: sequence title is required", domain.ErrValidation)
		}
		if txErr = validateSequence(seq); txErr != nil {
			return txErr
		}
		seq.Touch(userID, time.Now().UTC())
		return txSequences.Save(ctx, seq)
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

func applySequenceUpdate(seq *domain.Sequence, u app.SequenceUpdate) {
	if u.Title != nil {
		seq.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		seq.Description = *u.Description
	}
	if u.Category != nil {
		seq.Category = cmp.Or(strings.TrimSpace(*u.Category), domain.DefaultSequenceCategory)
	}
	if u.Priority != nil {
		seq.Priority = *u.Priority
	}
	if u.ClearDueDate {
		seq.DueDate = nil
	} else if u.DueDate != nil {
		due := *u.DueDate
		seq.DueDate = &due
	}
	if u.ReminderStrategy != nil {
		seq.ReminderStrategy = *u.ReminderStrategy
	}
	if u.DelegationStrategy != nil {
		seq.DelegationStrategy = *u.DelegationStrategy
	}
	if u.Tags != nil {
		seq.Tags = *u.Tags
	}
}

func (s *sequenceService) Archive(ctx context.Context, id, userID string) (err error) {
	uc := startUseCase(s.observer, "archive-sequence", map[string]any{"sequence_id": id})
	defer func() { uc.end(ctx, err) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		seq, err := txSequences.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if seq.Status == domain.SequenceArchived {
			return nil
		}
		seq.Status = domain.SequenceArchived
		seq.Touch(userID, time.Now().UTC())
		return txSequences.Save(ctx, seq)
	})
}

// Unarchive returns the sequence to active, then lets the aggregator decide
// whether it is in fact completed.
func (s *sequenceService) Unarchive(ctx context.Context, id, userID string) (err error) {
	uc := startUseCase(s.observer, "unarchive-sequence", map[string]any{"sequence_id": id})
	defer func() { uc.end(ctx, err) }()

	changed := false
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		seq, err := txSequences.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if seq.Status != domain.SequenceArchived {
			return nil
		}
		seq.Status = domain.SequenceActive
		seq.CompletedAt = nil
		seq.Touch(userID, time.Now().UTC())
		changed = true
		return txSequences.Save(ctx, seq)
	})
	if err != nil || !changed {
		return err
	}
	_, err = s.completion.RecomputeSequence(afterMutation(ctx, uc.name), id)
	return err
}

func (s *sequenceService) Delete(ctx context.Context, id string) (err error) {
	uc := startUseCase(s.observer, "delete-sequence", map[string]any{"sequence_id": id})
	defer func() { uc.end(ctx, err) }()

	return s.sequences.Delete(ctx, id)
}
