package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/delegation"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/repository"
	"github.com/alexanderramin/taskseq/internal/testutil"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) last(name string) (UseCaseEvent, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.events) - 1; i >= 0; i-- {
		if o.events[i].Name == name {
			return o.events[i], true
		}
	}
	return UseCaseEvent{}, false
}

// testEnv wires every service against one in-memory database.
type testEnv struct {
	db        *sql.DB
	sequences *repository.SQLiteSequenceRepo
	tasks     *repository.SQLiteTaskRepo
	members   *repository.SQLiteMemberRepo
	observer  *recordingObserver

	completion CompletionService
	sequence   SequenceService
	task       TaskService
	next       NextTaskService
	reminder   ReminderService
	delegation DelegationService
	member     MemberService
	imports    ImportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return newTestEnvWithUoW(t, database, testutil.NewTestUoW(database))
}

func newTestEnvWithUoW(t *testing.T, database *sql.DB, uow db.UnitOfWork) *testEnv {
	t.Helper()
	e := &testEnv{
		db:        database,
		sequences: repository.NewSQLiteSequenceRepo(database),
		tasks:     repository.NewSQLiteTaskRepo(database),
		members:   repository.NewSQLiteMemberRepo(database),
		observer:  &recordingObserver{},
	}
	e.completion = NewCompletionService(e.sequences, uow, e.observer)
	e.sequence = NewSequenceService(e.sequences, e.tasks, uow, e.completion, e.observer)
	e.task = NewTaskService(e.sequences, e.tasks, uow, e.completion, e.observer)
	e.next = NewNextTaskService(e.sequences, e.tasks)
	e.reminder = NewReminderService(e.sequences, e.tasks, uow, ScopeActionable, e.observer)
	e.delegation = NewDelegationService(e.sequences, e.tasks, e.members, uow, delegation.New(), e.observer)
	e.member = NewMemberService(e.members, uow)
	e.imports = NewImportService(e.sequence, e.observer)
	return e
}

// seed stores a sequence and its tasks directly through the repositories.
func (e *testEnv) seed(t *testing.T, seq *domain.Sequence, tasks ...*domain.Task) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.sequences.Save(ctx, seq))
	for _, task := range tasks {
		require.NoError(t, e.tasks.Save(ctx, task))
	}
}

func (e *testEnv) mustTask(t *testing.T, id string) *domain.Task {
	t.Helper()
	task, err := e.tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

func (e *testEnv) mustSequence(t *testing.T, id string) *domain.Sequence {
	t.Helper()
	seq, err := e.sequences.GetByID(context.Background(), id)
	require.NoError(t, err)
	return seq
}
