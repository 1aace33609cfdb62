// Package progress derives a sequence's completion percentage and status
// from its authoritative task set.
package progress

import (
	"math"
	"time"

	"github.com/alexanderramin/taskseq/internal/domain"
)

// pctEpsilon absorbs float noise when comparing a cached percentage with a
// recomputed one.
const pctEpsilon = 1e-9

type Summary struct {
	Completed int
	Total     int
	Pct       float64
}

// Summarize counts completed tasks. Pct is 100*completed/total, 0 for an
// empty sequence.
func Summarize(tasks []*domain.Task) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.Pct = 100 * float64(s.Completed) / float64(s.Total)
	}
	return s
}

// IsComplete reports whether every task is done. An empty sequence is not.
func (s Summary) IsComplete() bool {
	return s.Total > 0 && s.Completed == s.Total
}

type Outcome struct {
	// Changed is true when any persisted field of the sequence moved.
	Changed bool
	// Healed is true when the cached percentage disagreed with the recount.
	Healed bool
	// PreviousPct is the cached percentage before Apply.
	PreviousPct float64
}

// Apply writes summary into seq. Reaching 100% completes the sequence and
// stamps CompletedAt unless already stamped; dropping below 100% reverts a
// completed sequence to active. Archived sequences keep their status.
func Apply(seq *domain.Sequence, summary Summary, now time.Time) Outcome {
	out := Outcome{PreviousPct: seq.CompletionPct}
	if math.Abs(seq.CompletionPct-summary.Pct) > pctEpsilon {
		out.Healed = true
		out.Changed = true
		seq.CompletionPct = summary.Pct
	}

	switch {
	case seq.Status == domain.SequenceArchived:
	case summary.IsComplete():
		if seq.Status != domain.SequenceCompleted {
			seq.Status = domain.SequenceCompleted
			out.Changed = true
		}
		if seq.CompletedAt == nil {
			at := now
			seq.CompletedAt = &at
			out.Changed = true
		}
	default:
		if seq.Status == domain.SequenceCompleted {
			seq.Status = domain.SequenceActive
			out.Changed = true
		}
		if seq.CompletedAt != nil {
			seq.CompletedAt = nil
			out.Changed = true
		}
	}

	if out.Changed {
		seq.UpdatedAt = now
	}
	return out
}

// Rounded returns pct rounded to the nearest whole percent.
func Rounded(pct float64) int {
	return int(math.Round(pct))
}
