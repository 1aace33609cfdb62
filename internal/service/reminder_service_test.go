package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateReminders_ActionableOnly(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	now := testutil.Now

	seq := testutil.NewTestSequence("Party")
	fresh := testutil.NewTestTask(seq, "Guest list", testutil.WithPosition(0))
	blocked := testutil.NewTestTask(seq, "Invites", testutil.WithPosition(1), testutil.WithDependsOn(fresh.ID))
	recent := testutil.NewTestTask(seq, "Venue", testutil.WithPosition(2),
		testutil.WithLastReminder(now.Add(-time.Hour), 1))
	stale := testutil.NewTestTask(seq, "Cake", testutil.WithPosition(3),
		testutil.WithPriority(domain.PriorityCritical),
		testutil.WithLastReminder(now.Add(-5*time.Hour), 2))
	done := testutil.NewTestTask(seq, "Theme", testutil.WithPosition(4), testutil.WithCompleted())
	e.seed(t, seq, fresh, blocked, recent, stale, done)

	due, err := e.reminder.EvaluateReminders(ctx, seq.ID, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, fresh.ID, due[0].TaskID)
	assert.Equal(t, stale.ID, due[1].TaskID)
	assert.Equal(t, "Party", due[0].SequenceTitle)
	assert.Equal(t,
		`Reminder: "Cake" from sequence "Party" has no due date. The sequence is 0% complete. This task is critical for your family workflow.`,
		due[1].Message)
}

func TestEvaluateReminders_NextScopeIsDefault(t *testing.T) {
	database := testutil.NewTestDB(t)
	e := newTestEnvWithUoW(t, database, testutil.NewTestUoW(database))
	e.reminder = NewReminderService(e.sequences, e.tasks, testutil.NewTestUoW(database), "")

	seq := testutil.NewTestSequence("Party")
	a := testutil.NewTestTask(seq, "A", testutil.WithPosition(0))
	b := testutil.NewTestTask(seq, "B", testutil.WithPosition(1))
	e.seed(t, seq, a, b)

	due, err := e.reminder.EvaluateReminders(context.Background(), seq.ID, testutil.Now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, a.ID, due[0].TaskID)
}

func TestEvaluateReminders_InactiveSequence(t *testing.T) {
	e := newTestEnv(t)
	for _, status := range []domain.SequenceStatus{domain.SequenceArchived, domain.SequenceCompleted} {
		seq := testutil.NewTestSequence(string(status), testutil.WithSequenceStatus(status))
		e.seed(t, seq, testutil.NewTestTask(seq, "A"))

		due, err := e.reminder.EvaluateReminders(context.Background(), seq.ID, testutil.Now)
		require.NoError(t, err)
		assert.Empty(t, due, status)
	}
}

func TestAcknowledgeAndSnooze(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	now := testutil.Now

	seq := testutil.NewTestSequence("Chores")
	a := testutil.NewTestTask(seq, "Dishes", testutil.WithPriority(domain.PriorityHigh))
	e.seed(t, seq, a)

	require.NoError(t, e.reminder.Acknowledge(ctx, a.ID, now))
	stored := e.mustTask(t, a.ID)
	assert.Equal(t, 1, stored.Reminder.Count)
	require.NotNil(t, stored.Reminder.LastSentAt)
	assert.True(t, now.Equal(*stored.Reminder.LastSentAt))

	due, err := e.reminder.EvaluateReminders(ctx, seq.ID, now.Add(7*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due, "high priority waits 8h")

	due, err = e.reminder.EvaluateReminders(ctx, seq.ID, now.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Len(t, due, 1)

	later := now.Add(8 * time.Hour)
	require.NoError(t, e.reminder.Snooze(ctx, a.ID, later))
	stored = e.mustTask(t, a.ID)
	assert.Equal(t, 1, stored.Reminder.SnoozeCount)
	assert.Equal(t, 1, stored.Reminder.Count)
	assert.True(t, later.Equal(*stored.Reminder.LastSentAt))

	due, err = e.reminder.EvaluateReminders(ctx, seq.ID, later.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestEvaluateFamily(t *testing.T) {
	e := newTestEnv(t)

	one := testutil.NewTestSequence("One")
	two := testutil.NewTestSequence("Two")
	archived := testutil.NewTestSequence("Old", testutil.WithSequenceStatus(domain.SequenceArchived))
	foreign := testutil.NewTestSequence("Foreign", testutil.WithSequenceFamily("fam-2"))
	e.seed(t, one, testutil.NewTestTask(one, "A"))
	e.seed(t, two, testutil.NewTestTask(two, "B"))
	e.seed(t, archived, testutil.NewTestTask(archived, "C"))
	e.seed(t, foreign, testutil.NewTestTask(foreign, "D"))

	due, err := e.reminder.EvaluateFamily(context.Background(), testutil.FamilyID, testutil.Now)
	require.NoError(t, err)
	titles := make([]string, 0, len(due))
	for _, r := range due {
		titles = append(titles, r.TaskTitle)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, titles)
}

func TestParseReminderScope(t *testing.T) {
	scope, err := ParseReminderScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeNext, scope)

	scope, err = ParseReminderScope("actionable")
	require.NoError(t, err)
	assert.Equal(t, ScopeActionable, scope)

	_, err = ParseReminderScope("all")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
