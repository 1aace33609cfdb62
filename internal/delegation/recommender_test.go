package delegation

import (
	"testing"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parent(id, name string, skills ...domain.Skill) *domain.Member {
	return &domain.Member{ID: id, Name: name, Role: domain.RoleParent, Skills: skills}
}

func TestRecommend_LighterLoadWinsOnWorkload(t *testing.T) {
	a := parent("a", "Alex")
	b := parent("b", "Blair")
	task := &domain.Task{ID: "t1", Title: "Book hotel", Category: "Travel"}

	open := append(nAssigned(8, "a", "Home"), nAssigned(1, "b", "Home")...)
	recs := New().Recommend(Input{
		Tasks:     []*domain.Task{task},
		Members:   []*domain.Member{a, b},
		OpenTasks: open,
	})

	require.Contains(t, recs, "t1")
	rec := recs["t1"]
	assert.Equal(t, "b", rec.AssigneeID)
	assert.Equal(t, FactorWorkload, rec.Dominant)
	assert.Equal(t, "Blair has a lighter overall workload (89% available)", rec.Reason)
	assert.Greater(t, rec.Score, 0.0)
	assert.LessOrEqual(t, rec.Score, 100.0)
}

func TestRecommend_SameCategoryLoadStillCitesWorkload(t *testing.T) {
	a := parent("a", "Alex")
	b := parent("b", "Blair")
	task := &domain.Task{ID: "t1", Category: "Home"}

	open := append(nAssigned(8, "a", "Home"), nAssigned(1, "b", "Home")...)
	rec := New().Recommend(Input{Tasks: []*domain.Task{task}, Members: []*domain.Member{a, b}, OpenTasks: open})["t1"]

	assert.Equal(t, "b", rec.AssigneeID)
	assert.Equal(t, FactorWorkload, rec.Dominant)
}

func TestRecommend_TieGoesToFirstCandidate(t *testing.T) {
	a := parent("a", "Alex")
	b := parent("b", "Blair")
	task := &domain.Task{ID: "t1", Category: "Home"}

	ab := New().Recommend(Input{Tasks: []*domain.Task{task}, Members: []*domain.Member{a, b}})
	ba := New().Recommend(Input{Tasks: []*domain.Task{task}, Members: []*domain.Member{b, a}})

	assert.Equal(t, "a", ab["t1"].AssigneeID)
	assert.Equal(t, "b", ba["t1"].AssigneeID)
}

func TestRecommend_SkillCanDominate(t *testing.T) {
	a := parent("a", "Alex")
	b := parent("b", "Blair", domain.Skill{Category: "Repairs", Level: 5})
	task := &domain.Task{ID: "t1", Category: "Repairs"}

	rec := New(WithWeights(Weights{
		FactorWorkload: 0.1, FactorCategory: 0.1, FactorAvailability: 0.1, FactorSkill: 0.6, FactorHistory: 0.1,
	})).Recommend(Input{Tasks: []*domain.Task{task}, Members: []*domain.Member{a, b}})["t1"]

	assert.Equal(t, "b", rec.AssigneeID)
	assert.Equal(t, FactorSkill, rec.Dominant)
	assert.Equal(t, "Blair has skills that match this task type", rec.Reason)
}

func TestRecommend_OnlyEligibleRoles(t *testing.T) {
	kid := &domain.Member{ID: "k", Name: "Kid", Role: domain.RoleChild}
	task := &domain.Task{ID: "t1"}

	recs := New().Recommend(Input{Tasks: []*domain.Task{task}, Members: []*domain.Member{kid}})
	assert.Empty(t, recs)

	recs = New(WithEligibleRoles(domain.RoleParent, domain.RoleChild)).Recommend(Input{Tasks: []*domain.Task{task}, Members: []*domain.Member{kid}})
	assert.Equal(t, "k", recs["t1"].AssigneeID)
}

func TestRecommend_SkipsCompletedTasks(t *testing.T) {
	recs := New().Recommend(Input{
		Tasks:   []*domain.Task{{ID: "done", Completed: true}, {ID: "open"}},
		Members: []*domain.Member{parent("a", "Alex")},
	})
	assert.NotContains(t, recs, "done")
	assert.Contains(t, recs, "open")
}

func TestRecommend_ParallelMatchesSequential(t *testing.T) {
	members := []*domain.Member{parent("a", "Alex"), parent("b", "Blair", domain.Skill{Category: "Home", Level: 5})}
	open := append(nAssigned(4, "a", "Home"), nAssigned(2, "b", "Travel")...)
	history := append(open, assigned("a", "Travel", true), assigned("b", "Home", false))

	var tasks []*domain.Task
	for _, c := range []string{"Home", "Travel", "Garden", "Home"} {
		tasks = append(tasks, &domain.Task{ID: "t-" + c + string(rune('0'+len(tasks))), Category: c})
	}

	in := Input{Tasks: tasks, Members: members, OpenTasks: open, History: history}
	seq := New().Recommend(in)
	par := New(WithParallel(true)).Recommend(in)

	assert.Equal(t, seq, par)
	assert.Len(t, par, len(tasks))
}

func TestReason_Phrases(t *testing.T) {
	f := FactorScores{FactorWorkload: 66.6, FactorAvailability: 80}

	assert.Equal(t, "Sam handles fewer Laundry tasks right now", Reason("Sam", "Laundry", FactorCategory, f))
	assert.Equal(t, "Sam has more availability in their schedule (80%)", Reason("Sam", "", FactorAvailability, f))
	assert.Equal(t, "Sam has a good track record completing similar tasks", Reason("Sam", "", FactorHistory, f))
	assert.Equal(t, "Sam has a lighter overall workload (67% available)", Reason("Sam", "", FactorWorkload, f))
}
