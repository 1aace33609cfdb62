package service

import (
	"context"
	"math"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/progress"
	"github.com/alexanderramin/taskseq/internal/repository"
)

type completionService struct {
	sequences repository.SequenceRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewCompletionService(sequences repository.SequenceRepo, uow db.UnitOfWork, observers ...UseCaseObserver) CompletionService {
	return &completionService{
		sequences: sequences,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *completionService) RecomputeSequence(ctx context.Context, sequenceID string) (summary *app.SequenceSummary, err error) {
	uc := startUseCase(s.observer, "recompute-sequence", map[string]any{"sequence_id": sequenceID})
	defer func() { uc.end(ctx, err) }()

	now := time.Now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var txErr error
		summary, txErr = recompute(ctx, tx, sequenceID, now)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	uc.fields["pct"] = summary.Pct
	uc.fields["status"] = string(summary.Status)
	// After a mutation the cached percentage is expected to lag.
	if trigger := recomputeTrigger(ctx); trigger != "" {
		uc.fields["trigger"] = trigger
	} else if summary.Healed {
		uc.fields["healed"] = true
		uc.fields["previous_pct"] = summary.PreviousPct
	}
	return summary, nil
}

type recomputeTriggerKey struct{}

// afterMutation tags ctx so a following recompute is attributed to the named
// use case instead of being reported as drift.
func afterMutation(ctx context.Context, useCase string) context.Context {
	return context.WithValue(ctx, recomputeTriggerKey{}, useCase)
}

func recomputeTrigger(ctx context.Context) string {
	v, _ := ctx.Value(recomputeTriggerKey{}).(string)
	return v
}

func (s *completionService) ProgressHistory(ctx context.Context, sequenceID string) ([]domain.ProgressSample, error) {
	if _, err := s.sequences.GetByID(ctx, sequenceID); err != nil {
		return nil, err
	}
	return s.sequences.ListProgress(ctx, sequenceID)
}

// recompute re-derives a sequence's percentage and status from its tasks
// using repositories bound to tx. A progress sample is appended only when the
// percentage differs from the latest recorded one.
func recompute(ctx context.Context, tx db.DBTX, sequenceID string, now time.Time) (*app.SequenceSummary, error) {
	txSequences := repository.NewSQLiteSequenceRepo(tx)
	txTasks := repository.NewSQLiteTaskRepo(tx)

	seq, err := txSequences.GetByID(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	tasks, err := txTasks.ListBySequence(ctx, sequenceID)
	if err != nil {
		return nil, err
	}

	sum := progress.Summarize(tasks)
	out := progress.Apply(seq, sum, now)
	if out.Changed {
		if err := txSequences.Save(ctx, seq); err != nil {
			return nil, err
		}
	}

	latest, err := txSequences.LatestProgress(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	if latest == nil || math.Abs(latest.Pct-sum.Pct) > 1e-9 {
		sample := domain.ProgressSample{SequenceID: sequenceID, RecordedAt: now, Pct: sum.Pct}
		if err := txSequences.AppendProgress(ctx, sample); err != nil {
			return nil, err
		}
	}

	return &app.SequenceSummary{
		SequenceID:     seq.ID,
		CompletedCount: sum.Completed,
		TotalCount:     sum.Total,
		Pct:            sum.Pct,
		Status:         seq.Status,
		CompletedAt:    seq.CompletedAt,
		Healed:         out.Healed,
		PreviousPct:    out.PreviousPct,
	}, nil
}
