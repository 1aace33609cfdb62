package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/repository"
	"github.com/alexanderramin/taskseq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSequence_ResolvesRefs(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	id, err := e.sequence.CreateSequence(ctx, testutil.FamilyID, testutil.UserID, app.CreateSequenceRequest{
		Title:    "Move house",
		Category: "Home",
		Priority: domain.PriorityHigh,
		Tasks: []app.TaskSpec{
			{Ref: "pack", Title: "Pack boxes"},
			{Ref: "truck", Title: "Book truck", Priority: domain.PriorityCritical},
			{Ref: "move", Title: "Move", DependsOn: []string{"pack", "truck"}},
		},
	})
	require.NoError(t, err)

	view, err := e.sequence.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, view.Tasks, 3)
	assert.Equal(t, domain.SequenceActive, view.Sequence.Status)
	assert.Len(t, view.Sequence.TaskIDs, 3)

	pack, truck, move := view.Tasks[0].Task, view.Tasks[1].Task, view.Tasks[2].Task
	assert.Equal(t, 0, pack.Position)
	assert.Equal(t, 2, move.Position)
	assert.Equal(t, domain.PriorityHigh, pack.Priority, "task inherits the sequence priority")
	assert.Equal(t, domain.PriorityCritical, truck.Priority)
	assert.Equal(t, "Home", pack.Category)
	assert.ElementsMatch(t, []string{pack.ID, truck.ID}, move.Dependencies)

	assert.False(t, view.Tasks[0].Blocked)
	assert.True(t, view.Tasks[2].Blocked)
	assert.ElementsMatch(t, []string{pack.ID, truck.ID}, view.Tasks[2].PendingDependencies)
	assert.Equal(t, depgraph.StateActionable, view.State)
	require.NotNil(t, view.Next)
	assert.Equal(t, pack.ID, view.Next.ID)

	history, err := e.completion.ProgressHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 0.0, history[0].Pct)
}

func TestCreateSequence_Sequential(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	id, err := e.sequence.CreateSequence(ctx, testutil.FamilyID, testutil.UserID, app.CreateSequenceRequest{
		Title:      "Bake",
		Sequential: true,
		Tasks:      []app.TaskSpec{{Title: "Mix"}, {Title: "Bake"}, {Title: "Cool"}},
	})
	require.NoError(t, err)

	view, err := e.sequence.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, view.Tasks, 3)
	assert.Empty(t, view.Tasks[0].Task.Dependencies)
	assert.Equal(t, []string{view.Tasks[0].Task.ID}, view.Tasks[1].Task.Dependencies)
	assert.Equal(t, []string{view.Tasks[1].Task.ID}, view.Tasks[2].Task.Dependencies)
}

func TestCreateSequence_Defaults(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	id, err := e.sequence.CreateSequence(ctx, testutil.FamilyID, testutil.UserID, app.CreateSequenceRequest{
		Tasks: []app.TaskSpec{{}, {Title: "  "}},
	})
	require.NoError(t, err)

	view, err := e.sequence.Get(ctx, id)
	require.NoError(t, err)
	seq := view.Sequence
	assert.Equal(t, domain.DefaultSequenceTitle, seq.Title)
	assert.Equal(t, domain.DefaultSequenceCategory, seq.Category)
	assert.Equal(t, domain.PriorityMedium, seq.Priority)
	assert.Equal(t, domain.ReminderStandard, seq.ReminderStrategy)
	assert.Equal(t, domain.DelegationManual, seq.DelegationStrategy)
	assert.Equal(t, testutil.UserID, seq.CreatedBy)

	require.Len(t, view.Tasks, 2)
	assert.Equal(t, "Task 1", view.Tasks[0].Task.Title)
	assert.Equal(t, "Task 2", view.Tasks[1].Task.Title)
	assert.Equal(t, domain.DefaultEstimatedMin, view.Tasks[0].Task.EstimatedMin)
	assert.Equal(t, domain.TaskPending, view.Tasks[0].Task.Status())
}

func TestCreateSequence_RejectsBadDependencies(t *testing.T) {
	tests := []struct {
		name  string
		tasks []app.TaskSpec
	}{
		{"unknown ref", []app.TaskSpec{{Ref: "a", Title: "A", DependsOn: []string{"zzz"}}}},
		{"self reference", []app.TaskSpec{{Ref: "a", Title: "A", DependsOn: []string{"a"}}}},
		{"cycle", []app.TaskSpec{
			{Ref: "a", Title: "A", DependsOn: []string{"b"}},
			{Ref: "b", Title: "B", DependsOn: []string{"a"}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			ctx := context.Background()

			_, err := e.sequence.CreateSequence(ctx, testutil.FamilyID, testutil.UserID, app.CreateSequenceRequest{
				Title: "Broken",
				Tasks: tc.tasks,
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidDependency), "got %v", err)

			list, err := e.sequence.ListByFamily(ctx, testutil.FamilyID, true)
			require.NoError(t, err)
			assert.Empty(t, list, "nothing should be persisted")
		})
	}
}

func TestCreateSequence_CycleNamesPath(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.sequence.CreateSequence(context.Background(), testutil.FamilyID, testutil.UserID, app.CreateSequenceRequest{
		Tasks: []app.TaskSpec{
			{Ref: "a", Title: "Shop", DependsOn: []string{"b"}},
			{Ref: "b", Title: "Cook", DependsOn: []string{"a"}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Shop -> Cook -> Shop")
}

func TestCreateSequence_InvalidEnum(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.sequence.CreateSequence(context.Background(), testutil.FamilyID, testutil.UserID, app.CreateSequenceRequest{
		Priority: "urgent",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateSequence_RollbackOnTaskInsertFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	// ExecContext #1 = sequence upsert, #2 = first task upsert.
	failUoW := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: errors.New("injected task insert failure")}
	e := newTestEnvWithUoW(t, database, failUoW)
	ctx := context.Background()

	_, err := e.sequence.CreateSequence(ctx, testutil.FamilyID, testutil.UserID, app.CreateSequenceRequest{
		Title: "Doomed",
		Tasks: []app.TaskSpec{{Title: "One"}, {Title: "Two"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected task insert failure")

	list, err := e.sequences.ListByFamily(ctx, testutil.FamilyID, true)
	require.NoError(t, err)
	assert.Empty(t, list, "sequence insert should be rolled back")
}

func TestListByFamily_OverviewsAndArchiveFilter(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	chores := testutil.NewTestSequence("Chores")
	dishes := testutil.NewTestTask(chores, "Dishes", testutil.WithPosition(0), testutil.WithCompleted())
	laundry := testutil.NewTestTask(chores, "Laundry", testutil.WithPosition(1), testutil.WithDependsOn(dishes.ID))
	e.seed(t, chores, dishes, laundry)

	old := testutil.NewTestSequence("Old", testutil.WithSequenceStatus(domain.SequenceArchived))
	e.seed(t, old)

	other := testutil.NewTestSequence("Elsewhere", testutil.WithSequenceFamily("fam-2"))
	e.seed(t, other)

	list, err := e.sequence.ListByFamily(ctx, testutil.FamilyID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, chores.ID, list[0].Sequence.ID)
	require.NotNil(t, list[0].Next)
	assert.Equal(t, laundry.ID, list[0].Next.ID)
	assert.Equal(t, depgraph.StateActionable, list[0].State)

	all, err := e.sequence.ListByFamily(ctx, testutil.FamilyID, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, ov := range all {
		if ov.Sequence.ID == old.ID {
			assert.Equal(t, depgraph.StateEmpty, ov.State)
			assert.Nil(t, ov.Next)
		}
	}
}

func TestUpdateSequence(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seq := testutil.NewTestSequence("Garden")
	e.seed(t, seq)

	title := "Vegetable garden"
	prio := domain.PriorityLow
	strategy := domain.ReminderMinimal
	due := testutil.Now.AddDate(0, 1, 0)
	updated, err := e.sequence.Update(ctx, seq.ID, "user-2", app.SequenceUpdate{
		Title:            &title,
		Priority:         &prio,
		ReminderStrategy: &strategy,
		DueDate:          &due,
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "user-2", updated.LastUpdatedBy)

	stored := e.mustSequence(t, seq.ID)
	assert.Equal(t, title, stored.Title)
	assert.Equal(t, domain.PriorityLow, stored.Priority)
	assert.Equal(t, domain.ReminderMinimal, stored.ReminderStrategy)
	require.NotNil(t, stored.DueDate)
	assert.True(t, due.Equal(*stored.DueDate))

	_, err = e.sequence.Update(ctx, seq.ID, "user-2", app.SequenceUpdate{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, e.mustSequence(t, seq.ID).DueDate)
}

func TestUpdateSequence_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seq := testutil.NewTestSequence("Garden")
	e.seed(t, seq)

	bad := domain.Priority("urgent")
	_, err := e.sequence.Update(ctx, seq.ID, testutil.UserID, app.SequenceUpdate{Priority: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	empty := "   "
	_, err = e.sequence.Update(ctx, seq.ID, testutil.UserID, app.SequenceUpdate{Title: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, "Garden", e.mustSequence(t, seq.ID).Title)

	_, err = e.sequence.Update(ctx, "missing", testutil.UserID, app.SequenceUpdate{Title: &empty})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestArchiveUnarchive(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	seq := testutil.NewTestSequence("Done soon")
	a := testutil.NewTestTask(seq, "A", testutil.WithCompleted())
	e.seed(t, seq, a)

	require.NoError(t, e.sequence.Archive(ctx, seq.ID, testutil.UserID))
	assert.Equal(t, domain.SequenceArchived, e.mustSequence(t, seq.ID).Status)

	// Recompute leaves an archived sequence archived.
	summary, err := e.completion.RecomputeSequence(ctx, seq.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SequenceArchived, summary.Status)
	assert.Equal(t, 100.0, summary.Pct)

	require.NoError(t, e.sequence.Unarchive(ctx, seq.ID, testutil.UserID))
	restored := e.mustSequence(t, seq.ID)
	assert.Equal(t, domain.SequenceCompleted, restored.Status, "all tasks done, so unarchive lands on completed")
	assert.NotNil(t, restored.CompletedAt)

	// Unarchiving a non-archived sequence is a no-op.
	require.NoError(t, e.sequence.Unarchive(ctx, seq.ID, testutil.UserID))
	assert.Equal(t, domain.SequenceCompleted, e.mustSequence(t, seq.ID).Status)
}

func TestDeleteSequence_Cascades(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	seq := testutil.NewTestSequence("Trip")
	a := testutil.NewTestTask(seq, "Book", testutil.WithPosition(0))
	b := testutil.NewTestTask(seq, "Pack", testutil.WithPosition(1), testutil.WithDependsOn(a.ID))
	e.seed(t, seq, a, b)

	require.NoError(t, e.sequence.Delete(ctx, seq.ID))

	_, err := e.sequence.Get(ctx, seq.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = e.tasks.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, e.sequence.Delete(ctx, seq.ID), repository.ErrNotFound)
}
