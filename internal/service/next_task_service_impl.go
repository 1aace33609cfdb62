package service

import (
	"context"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/repository"
)

type nextTaskService struct {
	sequences repository.SequenceRepo
	tasks     repository.TaskRepo
}

func NewNextTaskService(sequences repository.SequenceRepo, tasks repository.TaskRepo) NextTaskService {
	return &nextTaskService{sequences: sequences, tasks: tasks}
}

// NextActionableTask returns nil both when the sequence is done and when
// every open task is blocked. Use Resolve to tell the two apart.
func (s *nextTaskService) NextActionableTask(ctx context.Context, sequenceID string) (*domain.Task, error) {
	res, err := s.Resolve(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	return res.Task, nil
}

func (s *nextTaskService) Resolve(ctx context.Context, sequenceID string) (*app.NextTask, error) {
	if _, err := s.sequences.GetByID(ctx, sequenceID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListBySequence(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	res := depgraph.Resolve(tasks)
	return &app.NextTask{SequenceID: sequenceID, Task: res.Next, State: res.State}, nil
}
