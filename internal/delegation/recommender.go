package delegation

import (
	"fmt"
	"math"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/sourcegraph/conc/iter"
)

// Recommendation is a proposed assignee for one task. It is never persisted.
type Recommendation struct {
	TaskID       string
	TaskTitle    string
	AssigneeID   string
	AssigneeName string
	Score        float64
	Dominant     Factor
	Reason       string
	Factors      FactorScores
}

// Input carries everything one recommendation run reads.
type Input struct {
	// Tasks are the tasks to place. Completed tasks are ignored.
	Tasks []*domain.Task
	// Members are the candidates in tie-break order.
	Members []*domain.Member
	// OpenTasks is the family's current open load.
	OpenTasks []*domain.Task
	// History is every family task, used for per-category success rates.
	History []*domain.Task
}

type Recommender struct {
	weights  Weights
	eligible map[domain.MemberRole]bool
	parallel bool
}

type Option func(*Recommender)

// WithWeights replaces the default weight table.
func WithWeights(w Weights) Option {
	return func(r *Recommender) { r.weights = w }
}

// WithEligibleRoles limits candidates to the given roles.
func WithEligibleRoles(roles ...domain.MemberRole) Option {
	return func(r *Recommender) {
		r.eligible = make(map[domain.MemberRole]bool, len(roles))
		for _, role := range roles {
			r.eligible[role] = true
		}
	}
}

// WithParallel scores tasks concurrently.
func WithParallel(on bool) Option {
	return func(r *Recommender) { r.parallel = on }
}

func New(opts ...Option) *Recommender {
	r := &Recommender{
		weights:  DefaultWeights,
		eligible: map[domain.MemberRole]bool{domain.RoleParent: true},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Eligible filters members down to assignable candidates, keeping order.
func (r *Recommender) Eligible(members []*domain.Member) []*domain.Member {
	var out []*domain.Member
	for _, m := range members {
		if r.eligible[m.Role] {
			out = append(out, m)
		}
	}
	return out
}

// Recommend proposes an assignee for every incomplete task in in.Tasks.
// Tasks with no eligible candidate get no entry.
func (r *Recommender) Recommend(in Input) map[string]Recommendation {
	candidates := r.Eligible(in.Members)
	out := make(map[string]Recommendation, len(in.Tasks))
	if len(candidates) == 0 {
		return out
	}

	load := NewLoad(in.OpenTasks)
	history := NewHistory(in.History)

	var open []*domain.Task
	for _, t := range in.Tasks {
		if !t.Completed {
			open = append(open, t)
		}
	}

	score := func(t **domain.Task) Recommendation {
		return r.best(*t, candidates, load, history)
	}
	var recs []Recommendation
	if r.parallel {
		recs = iter.Map(open, score)
	} else {
		recs = make([]Recommendation, len(open))
		for i := range open {
			recs[i] = score(&open[i])
		}
	}
	for _, rec := range recs {
		out[rec.TaskID] = rec
	}
	return out
}

// Score computes the factor values of one member for one task.
func (r *Recommender) Score(t *domain.Task, m *domain.Member, load *Load, history *History) FactorScores {
	return FactorScores{
		FactorWorkload:     WorkloadBalance(m.ID, load),
		FactorCategory:     CategoryBalance(m.ID, t.Category, load),
		FactorAvailability: Availability(load.OpenCount(m.ID)),
		FactorSkill:        SkillMatch(m, t.Category),
		FactorHistory:      HistoricalSuccess(m.ID, t.Category, history),
	}
}

// best picks the highest total. Only a strictly greater score replaces the
// current pick, so the earliest candidate wins ties.
func (r *Recommender) best(t *domain.Task, candidates []*domain.Member, load *Load, history *History) Recommendation {
	var (
		pick      *domain.Member
		pickScore = -1.0
		pickF     FactorScores
	)
	for _, m := range candidates {
		f := r.Score(t, m, load, history)
		if total := f.Total(r.weights); total > pickScore {
			pick, pickScore, pickF = m, total, f
		}
	}

	dominant := pickF.Dominant(r.weights)
	return Recommendation{
		TaskID:       t.ID,
		TaskTitle:    t.Title,
		AssigneeID:   pick.ID,
		AssigneeName: pick.Name,
		Score:        pickScore,
		Dominant:     dominant,
		Reason:       Reason(pick.Name, t.Category, dominant, pickF),
		Factors:      pickF,
	}
}

// Reason phrases the dominant factor for a person.
func Reason(name, category string, dominant Factor, f FactorScores) string {
	switch dominant {
	case FactorWorkload:
		return fmt.Sprintf("%s has a lighter overall workload (%d%% available)", name, round(f[FactorWorkload]))
	case FactorCategory:
		return fmt.Sprintf("%s handles fewer %s tasks right now", name, category)
	case FactorAvailability:
		return fmt.Sprintf("%s has more availability in their schedule (%d%%)", name, round(f[FactorAvailability]))
	case FactorSkill:
		return fmt.Sprintf("%s has skills that match this task type", name)
	default:
		return fmt.Sprintf("%s has a good track record completing similar tasks", name)
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
