package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrStr(s string) *string { return &s }
func ptrInt(i int) *int       { return &i }

func validFile() *SequenceFile {
	return &SequenceFile{
		Title:    "Move house",
		Category: "Home",
		Priority: "high",
		Tasks: []TaskImport{
			{Ref: "pack", Title: "Pack boxes"},
			{Ref: "truck", Title: "Book truck"},
			{Ref: "move", Title: "Move", DependsOn: []string{"pack", "truck"}},
		},
	}
}

func TestValidateSequenceFile_Valid(t *testing.T) {
	assert.Empty(t, ValidateSequenceFile(validFile()))
}

func TestValidateSequenceFile_EmptyTitlesAllowed(t *testing.T) {
	f := &SequenceFile{Tasks: []TaskImport{{}, {}}}
	assert.Empty(t, ValidateSequenceFile(f))
}

func TestValidateSequenceFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *SequenceFile)
		wantMsg string
	}{
		{"bad priority", func(f *SequenceFile) { f.Priority = "urgent" }, `priority: invalid value "urgent"`},
		{"bad reminder strategy", func(f *SequenceFile) { f.ReminderStrategy = "loud" }, `reminder_strategy: invalid value "loud"`},
		{"bad delegation strategy", func(f *SequenceFile) { f.DelegationStrategy = "random" }, `delegation_strategy: invalid value "random"`},
		{"bad due date", func(f *SequenceFile) { f.DueDate = ptrStr("next week") }, `due_date: invalid date format "next week"`},
		{"task bad priority", func(f *SequenceFile) { f.Tasks[0].Priority = "meh" }, `tasks[0].priority: invalid value "meh"`},
		{"task bad date", func(f *SequenceFile) { f.Tasks[1].DueDate = ptrStr("2025-13-01") }, `tasks[1].due_date: invalid date format`},
		{"negative estimate", func(f *SequenceFile) { f.Tasks[0].EstimatedMin = ptrInt(-5) }, "tasks[0].estimated_min must not be negative"},
		{"duplicate ref", func(f *SequenceFile) { f.Tasks[1].Ref = "pack" }, `tasks[1].ref: duplicate ref "pack"`},
		{"unknown ref", func(f *SequenceFile) { f.Tasks[2].DependsOn = []string{"van"} }, `tasks[2].depends_on: ref "van" not found in tasks`},
		{"self ref", func(f *SequenceFile) { f.Tasks[0].DependsOn = []string{"pack"} }, `tasks[0].depends_on: self-dependency "pack"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFile()
			tt.mutate(f)
			errs := ValidateSequenceFile(f)
			require.NotEmpty(t, errs)
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.wantMsg) {
					found = true
					break
				}
			}
			assert.True(t, found, "expected an error containing %q, got %v", tt.wantMsg, errs)
		})
	}
}

func TestValidateSequenceFile_CollectsAllErrors(t *testing.T) {
	f := validFile()
	f.Priority = "urgent"
	f.Tasks[0].Priority = "meh"
	f.Tasks[2].DependsOn = []string{"van"}

	assert.Len(t, ValidateSequenceFile(f), 3)
}

func TestValidateSequenceFile_Cycle(t *testing.T) {
	f := &SequenceFile{
		Title: "Loop",
		Tasks: []TaskImport{
			{Ref: "a", Title: "A", DependsOn: []string{"c"}},
			{Ref: "b", Title: "B", DependsOn: []string{"a"}},
			{Ref: "c", Title: "C", DependsOn: []string{"b"}},
		},
	}

	errs := ValidateSequenceFile(f)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], domain.ErrInvalidDependency))
	assert.Contains(t, errs[0].Error(), "cycle")
}

func TestValidateSequenceFile_SequentialWithExplicitDeps(t *testing.T) {
	f := &SequenceFile{
		Sequential: true,
		Tasks: []TaskImport{
			{Ref: "a", Title: "A"},
			{Ref: "b", Title: "B"},
			{Ref: "c", Title: "C", DependsOn: []string{"a"}},
		},
	}
	assert.Empty(t, ValidateSequenceFile(f))
}
