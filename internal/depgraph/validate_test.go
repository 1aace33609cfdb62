package depgraph

import (
	"errors"
	"testing"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDependencies(t *testing.T) {
	a := task("a", 0, false)
	b := task("b", 1, false, "a")
	foreign := &domain.Task{ID: "f", SequenceID: "other", Title: "Foreign"}

	require.NoError(t, ValidateDependencies(b, []*domain.Task{a, b}))

	tests := []struct {
		name string
		task *domain.Task
		want string
	}{
		{"self reference", task("s", 0, false, "s"), "depends on itself"},
		{"unknown id", task("u", 0, false, "nope"), "unknown task"},
		{"other sequence", task("o", 0, false, "f"), "another sequence"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDependencies(tc.task, []*domain.Task{a, foreign, tc.task})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidDependency)
			assert.Contains(t, err.Error(), tc.want)

			var depErr *DependencyError
			require.True(t, errors.As(err, &depErr))
			assert.Equal(t, tc.task.ID, depErr.TaskID)
		})
	}
}

func TestValidateAcyclic_AcceptsDAG(t *testing.T) {
	tasks := []*domain.Task{
		task("a", 0, false),
		task("b", 1, false, "a"),
		task("c", 2, false, "a"),
		task("d", 3, false, "b", "c"),
	}
	assert.NoError(t, ValidateAcyclic(tasks))
}

func TestValidateAcyclic_ReportsCyclePath(t *testing.T) {
	tasks := []*domain.Task{
		task("a", 0, false, "b"),
		task("b", 1, false, "c"),
		task("c", 2, false, "a"),
		task("d", 3, false),
	}
	err := ValidateAcyclic(tasks)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidDependency)
	assert.Equal(t, "invalid dependency: cycle: a -> b -> c -> a", err.Error())
}

func TestValidateAcyclic_TwoNodeCycleIsDeterministic(t *testing.T) {
	build := func() []*domain.Task {
		return []*domain.Task{task("y", 1, false, "x"), task("x", 0, false, "y")}
	}
	first := ValidateAcyclic(build())
	second := ValidateAcyclic(build())
	require.Error(t, first)
	assert.Equal(t, first.Error(), second.Error())
	assert.Contains(t, first.Error(), "x -> y -> x")
}

func TestValidateAcyclic_IgnoresUnknownIDs(t *testing.T) {
	assert.NoError(t, ValidateAcyclic([]*domain.Task{task("a", 0, false, "ghost")}))
}
