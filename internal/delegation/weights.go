// Package delegation scores household members against open tasks and
// proposes one assignee per task with a plain-language reason.
package delegation

// Factor names one input of the assignment score.
type Factor string

const (
	FactorWorkload     Factor = "workload_balance"
	FactorCategory     Factor = "category_balance"
	FactorAvailability Factor = "availability"
	FactorSkill        Factor = "skill_match"
	FactorHistory      Factor = "historical_success"
)

// factorOrder fixes evaluation order. When two factors contribute the same
// weighted amount, the earlier one is reported as dominant.
var factorOrder = []Factor{FactorWorkload, FactorCategory, FactorAvailability, FactorSkill, FactorHistory}

// Weights maps each factor to its share of the final score. The shares sum to 1.
type Weights map[Factor]float64

// DefaultWeights is the production weight table.
var DefaultWeights = Weights{
	FactorWorkload:     0.30,
	FactorCategory:     0.20,
	FactorAvailability: 0.25,
	FactorSkill:        0.15,
	FactorHistory:      0.10,
}

// neutralScore is used when a factor has no data to discriminate on.
const neutralScore = 50.0

// FactorScores holds the raw 0–100 value of each factor for one member.
type FactorScores map[Factor]float64

// Weighted returns the contribution of every factor under w.
func (f FactorScores) Weighted(w Weights) map[Factor]float64 {
	out := make(map[Factor]float64, len(factorOrder))
	for _, k := range factorOrder {
		out[k] = f[k] * w[k]
	}
	return out
}

// Total is the weighted sum.
func (f FactorScores) Total(w Weights) float64 {
	var sum float64
	for _, k := range factorOrder {
		sum += f[k] * w[k]
	}
	return sum
}

// Dominant returns the factor with the largest weighted contribution.
func (f FactorScores) Dominant(w Weights) Factor {
	best := factorOrder[0]
	bestVal := f[best] * w[best]
	for _, k := range factorOrder[1:] {
		if v := f[k] * w[k]; v > bestVal {
			best, bestVal = k, v
		}
	}
	return best
}
