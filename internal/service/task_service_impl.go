package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/repository"
)

type taskService struct {
	sequences  repository.SequenceRepo
	tasks      repository.TaskRepo
	uow        db.UnitOfWork
	completion CompletionService
	observer   UseCaseObserver
}

func NewTaskService(
	sequences repository.SequenceRepo,
	tasks repository.TaskRepo,
	uow db.UnitOfWork,
	completion CompletionService,
	observers ...UseCaseObserver,
) TaskService {
	return &taskService{
		sequences:  sequences,
		tasks:      tasks,
		uow:        uow,
		completion: completion,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) AddTask(ctx context.Context, sequenceID, userID string, spec app.TaskSpec) (task *domain.Task, err error) {
	uc := startUseCase(s.observer, "add-task", map[string]any{"sequence_id": sequenceID})
	defer func() { uc.end(ctx, err) }()

	now := time.Now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		seq, err := txSequences.GetByID(ctx, sequenceID)
		if err != nil {
			return err
		}
		siblings, err := txTasks.ListBySequence(ctx, sequenceID)
		if err != nil {
			return err
		}

		task = newTask(seq, spec, userID, len(siblings), now)
		task.SetDependencies(spec.DependsOn)
		if err := validateTask(task); err != nil {
			return err
		}
		if err := depgraph.ValidateDependencies(task, siblings); err != nil {
			return err
		}
		if err := depgraph.ValidateAcyclic(append(siblings, task)); err != nil {
			return err
		}
		if err := txTasks.Save(ctx, task); err != nil {
			return fmt.Errorf("creating task '%s': %w", task.Title, err)
		}

		seq.Touch(userID, now)
		return txSequences.Save(ctx, seq)
	})
	if err != nil {
		return nil, err
	}
	uc.fields["task_id"] = task.ID

	if _, err = s.completion.RecomputeSequence(afterMutation(ctx, uc.name), sequenceID); err != nil {
		return task, fmt.Errorf("recomputing sequence: %w", err)
	}
	return task, nil
}

// RemoveTask deletes a task, strips it from its siblings' dependency sets and
// closes the gap in positions.
func (s *taskService) RemoveTask(ctx context.Context, sequenceID, taskID, userID string) (err error) {
	uc := startUseCase(s.observer, "remove-task", map[string]any{"sequence_id": sequenceID, "task_id": taskID})
	defer func() { uc.end(ctx, err) }()

	now := time.Now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		seq, err := txSequences.GetByID(ctx, sequenceID)
		if err != nil {
			return err
		}
		siblings, err := txTasks.ListBySequence(ctx, sequenceID)
		if err != nil {
			return err
		}
		if !containsTask(siblings, taskID) {
			return fmt.Errorf("task %s in sequence %s: %w", taskID, sequenceID, repository.ErrNotFound)
		}

		if err := txTasks.Delete(ctx, taskID); err != nil {
			return err
		}

		pos := 0
		for _, t := range siblings {
			if t.ID == taskID {
				continue
			}
			changed := t.RemoveDependency(taskID)
			if t.Position != pos {
				t.Position = pos
				changed = true
			}
			pos++
			if !changed {
				continue
			}
			t.UpdatedAt = now
			if err := txTasks.Save(ctx, t); err != nil {
				return fmt.Errorf("updating task '%s': %w", t.Title, err)
			}
		}

		seq.RemoveTaskID(taskID)
		seq.Touch(userID, now)
		return txSequences.Save(ctx, seq)
	})
	if err != nil {
		return err
	}

	_, err = s.completion.RecomputeSequence(afterMutation(ctx, uc.name), sequenceID)
	return err
}

func (s *taskService) UpdateTask(ctx context.Context, taskID, userID string, u app.TaskUpdate) (task *domain.Task, err error) {
	uc := startUseCase(s.observer, "update-task", map[string]any{"task_id": taskID})
	defer func() { uc.end(ctx, err) }()

	if u.IsEmpty() {
		return s.tasks.GetByID(ctx, taskID)
	}

	now := time.Now().UTC()
	completionChanged := false
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		var depsChanged bool
		completionChanged, depsChanged = applyTaskUpdate(task, u, userID, now)
		if err := validateTask(task); err != nil {
			return err
		}
		if depsChanged {
			siblings, err := txTasks.ListBySequence(ctx, task.SequenceID)
			if err != nil {
				return err
			}
			if err := depgraph.ValidateDependencies(task, siblings); err != nil {
				return err
			}
			if err := depgraph.ValidateAcyclic(replaceTask(siblings, task)); err != nil {
				return err
			}
		}
		if err := txTasks.Save(ctx, task); err != nil {
			return err
		}
		return touchSequence(ctx, txSequences, task.SequenceID, userID, now)
	})
	if err != nil {
		return nil, err
	}

	uc.fields["completion_changed"] = completionChanged
	if completionChanged {
		if _, err = s.completion.RecomputeSequence(afterMutation(ctx, uc.name), task.SequenceID); err != nil {
			return task, fmt.Errorf("recomputing sequence: %w", err)
		}
	}
	return task, nil
}

// SetCompleted marks a task done or reopens it. Blocked tasks may be
// completed; dependencies only order the work.
func (s *taskService) SetCompleted(ctx context.Context, taskID, userID string, done bool) (*domain.Task, error) {
	return s.UpdateTask(ctx, taskID, userID, app.TaskUpdate{Completed: &done})
}

func (s *taskService) SetSubTaskCompleted(ctx context.Context, taskID string, index int, done bool, userID string) (task *domain.Task, err error) {
	uc := startUseCase(s.observer, "set-subtask", map[string]any{"task_id": taskID, "index": index})
	defer func() { uc.end(ctx, err) }()

	now := time.Now().UTC()
	rolledUp := false
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		rolledUp, err = task.SetSubTaskCompleted(index, done, userID, now)
		if err != nil {
			return err
		}
		if err := txTasks.Save(ctx, task); err != nil {
			return err
		}
		return touchSequence(ctx, txSequences, task.SequenceID, userID, now)
	})
	if err != nil {
		return nil, err
	}

	if rolledUp {
		if _, err = s.completion.RecomputeSequence(afterMutation(ctx, uc.name), task.SequenceID); err != nil {
			return task, fmt.Errorf("recomputing sequence: %w", err)
		}
	}
	return task, nil
}

// ReorderTasks assigns positions 0..n-1 following orderedIDs, which must name
// every task of the sequence exactly once.
func (s *taskService) ReorderTasks(ctx context.Context, sequenceID, userID string, orderedIDs []string) (err error) {
	uc := startUseCase(s.observer, "reorder-tasks", map[string]any{"sequence_id": sequenceID})
	defer func() { uc.end(ctx, err) }()

	now := time.Now().UTC()
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		seq, err := txSequences.GetByID(ctx, sequenceID)
		if err != nil {
			return err
		}
		tasks, err := txTasks.ListBySequence(ctx, sequenceID)
		if err != nil {
			return err
		}
		if err := checkPermutation(tasks, orderedIDs); err != nil {
			return err
		}

		byID := make(map[string]*domain.Task, len(tasks))
		for _, t := range tasks {
			byID[t.ID] = t
		}
		for pos, id := range orderedIDs {
			t := byID[id]
			if t.Position == pos {
				continue
			}
			t.Position = pos
			t.UpdatedAt = now
			if err := txTasks.Save(ctx, t); err != nil {
				return fmt.Errorf("moving task '%s': %w", t.Title, err)
			}
		}

		seq.TaskIDs = append([]string(nil), orderedIDs...)
		seq.Touch(userID, now)
		return txSequences.Save(ctx, seq)
	})
}

func checkPermutation(tasks []*domain.Task, orderedIDs []string) error {
	if len(orderedIDs) != len(tasks) {
		return fmt.Errorf("%w: reorder names %d tasks, sequence has %d", domain.ErrValidation, len(orderedIDs), len(tasks))
	}
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			return fmt.Errorf("%w: task %s listed twice", domain.ErrValidation, id)
		}
		if !containsTask(tasks, id) {
			return fmt.Errorf("%w: task %s is not in the sequence", domain.ErrValidation, id)
		}
		seen[id] = true
	}
	return nil
}

func containsTask(tasks []*domain.Task, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func touchSequence(ctx context.Context, sequences repository.SequenceRepo, id, userID string, now time.Time) error {
	seq, err := sequences.GetByID(ctx, id)
	if err != nil {
		return err
	}
	seq.Touch(userID, now)
	return sequences.Save(ctx, seq)
}
