package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SequenceFile is the top-level structure of a sequence definition file.
type SequenceFile struct {
	Title              string       `json:"title" yaml:"title"`
	Description        string       `json:"description,omitempty" yaml:"description,omitempty"`
	Category           string       `json:"category,omitempty" yaml:"category,omitempty"`
	Priority           string       `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueDate            *string      `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	ReminderStrategy   string       `json:"reminder_strategy,omitempty" yaml:"reminder_strategy,omitempty"`
	DelegationStrategy string       `json:"delegation_strategy,omitempty" yaml:"delegation_strategy,omitempty"`
	Tags               []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Sequential         bool         `json:"sequential,omitempty" yaml:"sequential,omitempty"`
	Tasks              []TaskImport `json:"tasks" yaml:"tasks"`
}

// TaskImport defines one task. DependsOn names other tasks of the file by ref.
type TaskImport struct {
	Ref              string   `json:"ref,omitempty" yaml:"ref,omitempty"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category         string   `json:"category,omitempty" yaml:"category,omitempty"`
	Priority         string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueDate          *string  `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	AssignedTo       string   `json:"assigned_to,omitempty" yaml:"assigned_to,omitempty"`
	EstimatedMin     *int     `json:"estimated_min,omitempty" yaml:"estimated_min,omitempty"`
	ReminderStrategy string   `json:"reminder_strategy,omitempty" yaml:"reminder_strategy,omitempty"`
	Notes            string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Tags             []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	DependsOn        []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	SubTasks         []string `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
}

// LoadFile reads a sequence definition. Files ending in .json are parsed as
// JSON, everything else as YAML.
func LoadFile(path string) (*SequenceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Parse decodes a sequence definition from data.
func Parse(data []byte, isJSON bool) (*SequenceFile, error) {
	var file SequenceFile
	if isJSON {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing sequence file: %w", err)
		}
		return &file, nil
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing sequence file: %w", err)
	}
	return &file, nil
}
