package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/delegation"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/repository"
)

type delegationService struct {
	sequences   repository.SequenceRepo
	tasks       repository.TaskRepo
	members     repository.MemberRepo
	uow         db.UnitOfWork
	recommender *delegation.Recommender
	observer    UseCaseObserver
}

func NewDelegationService(
	sequences repository.SequenceRepo,
	tasks repository.TaskRepo,
	members repository.MemberRepo,
	uow db.UnitOfWork,
	recommender *delegation.Recommender,
	observers ...UseCaseObserver,
) DelegationService {
	if recommender == nil {
		recommender = delegation.New()
	}
	return &delegationService{
		sequences:   sequences,
		tasks:       tasks,
		members:     members,
		uow:         uow,
		recommender: recommender,
		observer:    useCaseObserverOrNoop(observers),
	}
}

// Recommend proposes an assignee for each open task in taskIDs. When members
// is empty the family's stored members are the candidates. Nothing is
// written.
func (s *delegationService) Recommend(ctx context.Context, familyID string, taskIDs []string, members []*domain.Member) (out map[string]app.Recommendation, err error) {
	uc := startUseCase(s.observer, "recommend-assignees", map[string]any{"family_id": familyID, "tasks": len(taskIDs)})
	defer func() { uc.end(ctx, err) }()

	if len(members) == 0 {
		members, err = s.members.ListByFamily(ctx, familyID)
		if err != nil {
			return nil, err
		}
	} else {
		members = membersOfFamily(members, familyID)
	}
	if len(s.recommender.Eligible(members)) == 0 {
		return nil, ErrNoEligibleMembers
	}

	tasks := make([]*domain.Task, 0, len(taskIDs))
	for _, id := range taskIDs {
		t, err := s.tasks.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if t.FamilyID != familyID {
			return nil, fmt.Errorf("task %s: %w", id, repository.ErrNotFound)
		}
		tasks = append(tasks, t)
	}

	open, history, err := s.familyLoad(ctx, familyID)
	if err != nil {
		return nil, err
	}

	recs := s.recommender.Recommend(delegation.Input{
		Tasks:     tasks,
		Members:   members,
		OpenTasks: open,
		History:   history,
	})
	out = make(map[string]app.Recommendation, len(recs))
	for id, rec := range recs {
		out[id] = toAppRecommendation(rec)
	}
	uc.fields["recommended"] = len(out)
	return out, nil
}

// Apply assigns a task to a member of the task's family.
func (s *delegationService) Apply(ctx context.Context, taskID, assigneeID, userID string) (task *domain.Task, err error) {
	uc := startUseCase(s.observer, "apply-delegation", map[string]any{"task_id": taskID, "assignee_id": assigneeID})
	defer func() { uc.end(ctx, err) }()

	now := time.Now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txMembers := repository.NewSQLiteMemberRepo(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		member, err := txMembers.GetByID(ctx, assigneeID)
		if err != nil {
			return err
		}
		if member.FamilyID != task.FamilyID {
			return fmt.Errorf("%w: member %s does not belong to the task's family", domain.ErrValidation, member.Name)
		}

		task.AssignedTo = member.ID
		task.UpdatedAt = now
		if err := txTasks.Save(ctx, task); err != nil {
			return err
		}
		return touchSequence(ctx, txSequences, task.SequenceID, userID, now)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// AutoAssign places every unassigned open task of an auto-delegation
// sequence, in position order. Each placement counts toward the load seen by
// the next one.
func (s *delegationService) AutoAssign(ctx context.Context, sequenceID, userID string) (out []app.Recommendation, err error) {
	uc := startUseCase(s.observer, "auto-assign", map[string]any{"sequence_id": sequenceID})
	defer func() { uc.end(ctx, err) }()

	seq, err := s.sequences.GetByID(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	if seq.DelegationStrategy != domain.DelegationAuto {
		return nil, fmt.Errorf("%w: sequence %q uses %s delegation", domain.ErrValidation, seq.Title, seq.DelegationStrategy)
	}

	members, err := s.members.ListByFamily(ctx, seq.FamilyID)
	if err != nil {
		return nil, err
	}
	if len(s.recommender.Eligible(members)) == 0 {
		return nil, ErrNoEligibleMembers
	}
	tasks, err := s.tasks.ListBySequence(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	open, history, err := s.familyLoad(ctx, seq.FamilyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var assigned []*domain.Task
	for _, t := range tasks {
		if t.Completed || t.AssignedTo != "" {
			continue
		}
		recs := s.recommender.Recommend(delegation.Input{
			Tasks:     []*domain.Task{t},
			Members:   members,
			OpenTasks: open,
			History:   history,
		})
		rec, ok := recs[t.ID]
		if !ok {
			continue
		}
		t.AssignedTo = rec.AssigneeID
		t.UpdatedAt = now
		open = append(open, t)
		assigned = append(assigned, t)
		out = append(out, toAppRecommendation(rec))
	}
	if len(assigned) == 0 {
		return nil, nil
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteSequenceRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)
		for _, t := range assigned {
			if err := txTasks.Save(ctx, t); err != nil {
				return fmt.Errorf("assigning task '%s': %w", t.Title, err)
			}
		}
		return touchSequence(ctx, txSequences, sequenceID, userID, now)
	})
	if err != nil {
		return nil, err
	}
	uc.fields["assigned"] = len(out)
	return out, nil
}

func (s *delegationService) familyLoad(ctx context.Context, familyID string) (open, history []*domain.Task, err error) {
	open, err = s.tasks.ListOpenByFamily(ctx, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading open tasks: %w", err)
	}
	history, err = s.tasks.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading task history: %w", err)
	}
	return open, history, nil
}

func toAppRecommendation(rec delegation.Recommendation) app.Recommendation {
	return app.Recommendation{
		TaskID:       rec.TaskID,
		TaskTitle:    rec.TaskTitle,
		AssigneeID:   rec.AssigneeID,
		AssigneeName: rec.AssigneeName,
		Score:        rec.Score,
		Factor:       string(rec.Dominant),
		Reason:       rec.Reason,
	}
}

func membersOfFamily(members []*domain.Member, familyID string) []*domain.Member {
	var out []*domain.Member
	for _, m := range members {
		if m.FamilyID == familyID {
			out = append(out, m)
		}
	}
	return out
}
