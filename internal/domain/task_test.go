package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_MarkCompleteAndReopen(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	task := &Task{Title: "Paint walls"}

	assert.True(t, task.MarkComplete("mom", now))
	assert.Equal(t, TaskCompleted, task.Status())
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
	assert.Equal(t, "mom", task.CompletedBy)

	assert.False(t, task.MarkComplete("dad", now.Add(time.Hour)), "second completion is a no-op")
	assert.Equal(t, "mom", task.CompletedBy)

	assert.True(t, task.Reopen(now))
	assert.Equal(t, TaskPending, task.Status())
	assert.Nil(t, task.CompletedAt)
	assert.Empty(t, task.CompletedBy)
	assert.False(t, task.Reopen(now))
}

func TestTask_SubTaskRollUp(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	task := &Task{SubTasks: []SubTask{{Title: "Tape"}, {Title: "Prime"}}}

	changed, err := task.SetSubTaskCompleted(0, true, "dad", now)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, task.Completed)

	changed, err = task.SetSubTaskCompleted(1, true, "dad", now)
	require.NoError(t, err)
	assert.True(t, changed, "last sub-task completes the task")
	assert.True(t, task.Completed)
	assert.Equal(t, "dad", task.CompletedBy)

	changed, err = task.SetSubTaskCompleted(0, false, "dad", now)
	require.NoError(t, err)
	assert.True(t, changed, "reopening a sub-task reopens the task")
	assert.False(t, task.Completed)
}

func TestTask_SubTaskIndexOutOfRange(t *testing.T) {
	task := &Task{SubTasks: []SubTask{{Title: "Only"}}}
	_, err := task.SetSubTaskCompleted(3, true, "", time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTask_Dependencies(t *testing.T) {
	task := &Task{}
	task.SetDependencies([]string{"b", "a", "b", ""})
	assert.Equal(t, []string{"a", "b"}, task.Dependencies)
	assert.True(t, task.HasDependency("a"))

	assert.True(t, task.RemoveDependency("a"))
	assert.False(t, task.RemoveDependency("a"))
	assert.Equal(t, []string{"b"}, task.Dependencies)
}

func TestTask_EffectiveReminderStrategy(t *testing.T) {
	seq := &Sequence{ReminderStrategy: ReminderAdaptive}

	assert.Equal(t, ReminderAdaptive, (&Task{}).EffectiveReminderStrategy(seq))
	assert.Equal(t, ReminderMinimal, (&Task{Reminder: ReminderSettings{Strategy: ReminderMinimal}}).EffectiveReminderStrategy(seq))
	assert.Equal(t, ReminderStandard, (&Task{}).EffectiveReminderStrategy(nil))
}

func TestTask_ReminderBookkeeping(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	task := &Task{}

	task.RecordReminderSent(now)
	task.RecordSnooze(now.Add(time.Hour))

	assert.Equal(t, 1, task.Reminder.Count)
	assert.Equal(t, 1, task.Reminder.SnoozeCount)
	require.NotNil(t, task.Reminder.LastSentAt)
	assert.Equal(t, now.Add(time.Hour), *task.Reminder.LastSentAt)
}

func TestSequence_ApplyDefaults(t *testing.T) {
	seq := &Sequence{}
	seq.ApplyDefaults()

	assert.Equal(t, DefaultSequenceTitle, seq.Title)
	assert.Equal(t, DefaultSequenceCategory, seq.Category)
	assert.Equal(t, SequenceActive, seq.Status)
	assert.Equal(t, PriorityMedium, seq.Priority)
	assert.Equal(t, ReminderStandard, seq.ReminderStrategy)
	assert.Equal(t, DelegationManual, seq.DelegationStrategy)
}

func TestSequence_RemoveTaskID(t *testing.T) {
	seq := &Sequence{TaskIDs: []string{"a", "b", "c"}}
	assert.True(t, seq.RemoveTaskID("b"))
	assert.Equal(t, []string{"a", "c"}, seq.TaskIDs)
	assert.False(t, seq.HasTask("b"))
	assert.False(t, seq.RemoveTaskID("zzz"))
}

func TestMember_SkillMatching(t *testing.T) {
	m := &Member{Name: "Sam"}
	require.NoError(t, m.SetSkill(Skill{Category: "Home", Tags: []string{"Renovation"}, Level: 4}))
	require.NoError(t, m.SetSkill(Skill{Category: "home", Level: 5}))
	assert.Len(t, m.Skills, 1, "same category replaces")

	s, ok := m.SkillFor("HOME")
	require.True(t, ok)
	assert.Equal(t, 5, s.Level)

	_, ok = m.SkillFor("Travel")
	assert.False(t, ok)

	err := m.SetSkill(Skill{Category: "Travel", Level: 9})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseEnums(t *testing.T) {
	p, err := ParsePriority(" High ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	p, err = ParsePriority("")
	require.NoError(t, err)
	assert.Empty(t, p)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseReminderStrategy("loud")
	assert.ErrorIs(t, err, ErrValidation)

	r, err := ParseMemberRole("parent")
	require.NoError(t, err)
	assert.Equal(t, RoleParent, r)
}
