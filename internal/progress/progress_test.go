package progress

import (
	"testing"
	"time"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func tasks(completed ...bool) []*domain.Task {
	out := make([]*domain.Task, len(completed))
	for i, c := range completed {
		out[i] = &domain.Task{ID: string(rune('a' + i)), Completed: c}
	}
	return out
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		completed []bool
		want      float64
	}{
		{"empty", nil, 0},
		{"none done", []bool{false, false}, 0},
		{"three of four", []bool{true, true, true, false}, 75},
		{"one of three", []bool{true, false, false}, 100.0 / 3},
		{"all", []bool{true, true}, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Summarize(tasks(tc.completed...))
			assert.InDelta(t, tc.want, s.Pct, 1e-9)
			assert.Equal(t, len(tc.completed), s.Total)
		})
	}
}

func TestApply_ThreeOfFourStaysActive(t *testing.T) {
	seq := &domain.Sequence{Status: domain.SequenceActive}
	out := Apply(seq, Summarize(tasks(true, true, true, false)), now)

	assert.True(t, out.Changed)
	assert.Equal(t, 75.0, seq.CompletionPct)
	assert.Equal(t, domain.SequenceActive, seq.Status)
	assert.Nil(t, seq.CompletedAt)
}

func TestApply_CompletesAndReverts(t *testing.T) {
	seq := &domain.Sequence{Status: domain.SequenceActive}

	Apply(seq, Summarize(tasks(true, true)), now)
	assert.Equal(t, domain.SequenceCompleted, seq.Status)
	require.NotNil(t, seq.CompletedAt)
	assert.Equal(t, now, *seq.CompletedAt)

	later := now.Add(time.Hour)
	out := Apply(seq, Summarize(tasks(true, false)), later)
	assert.True(t, out.Changed)
	assert.Equal(t, domain.SequenceActive, seq.Status)
	assert.Nil(t, seq.CompletedAt)
	assert.Equal(t, 50.0, seq.CompletionPct)
}

func TestApply_Idempotent(t *testing.T) {
	seq := &domain.Sequence{Status: domain.SequenceActive}
	summary := Summarize(tasks(true, true))

	first := Apply(seq, summary, now)
	snapshot := *seq
	second := Apply(seq, summary, now.Add(time.Minute))

	assert.True(t, first.Changed)
	assert.False(t, second.Changed)
	assert.False(t, second.Healed)
	assert.Equal(t, snapshot, *seq, "second run must not touch the sequence")
}

func TestApply_HealsStaleCache(t *testing.T) {
	seq := &domain.Sequence{Status: domain.SequenceActive, CompletionPct: 90}
	out := Apply(seq, Summarize(tasks(true, false)), now)

	assert.True(t, out.Healed)
	assert.Equal(t, 90.0, out.PreviousPct)
	assert.Equal(t, 50.0, seq.CompletionPct)
}

func TestApply_ArchivedKeepsStatus(t *testing.T) {
	seq := &domain.Sequence{Status: domain.SequenceArchived}
	Apply(seq, Summarize(tasks(true)), now)

	assert.Equal(t, domain.SequenceArchived, seq.Status)
	assert.Equal(t, 100.0, seq.CompletionPct)
	assert.Nil(t, seq.CompletedAt)
}

func TestApply_EmptySequenceIsNotComplete(t *testing.T) {
	seq := &domain.Sequence{Status: domain.SequenceCompleted}
	Apply(seq, Summarize(nil), now)
	assert.Equal(t, domain.SequenceActive, seq.Status)
	assert.Equal(t, 0.0, seq.CompletionPct)
}

func TestRounded(t *testing.T) {
	assert.Equal(t, 33, Rounded(100.0/3))
	assert.Equal(t, 67, Rounded(200.0/3))
}
