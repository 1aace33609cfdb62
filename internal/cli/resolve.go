package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/domain"
)

// resolveSequenceID accepts a full id, an id prefix or a case-insensitive
// title and returns the matching sequence id in the current family.
func resolveSequenceID(ctx context.Context, a *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("sequence is required")
	}

	overviews, err := a.Sequences.ListByFamily(ctx, a.familyID(), true)
	if err != nil {
		return "", err
	}

	for _, o := range overviews {
		if o.Sequence.ID == input {
			return o.Sequence.ID, nil
		}
	}

	var matches []string
	for _, o := range overviews {
		if strings.HasPrefix(o.Sequence.ID, input) || strings.EqualFold(o.Sequence.Title, input) {
			matches = append(matches, o.Sequence.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("sequence not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("sequence %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveTask finds a task of view by 1-based position, id, id prefix or
// case-insensitive title.
func resolveTask(view *app.SequenceView, input string) (*domain.Task, error) {
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(view.Tasks) {
			return nil, fmt.Errorf("task position %d out of range (sequence has %d tasks)", n, len(view.Tasks))
		}
		return view.Tasks[n-1].Task, nil
	}

	var matches []*domain.Task
	for _, tv := range view.Tasks {
		if tv.Task.ID == input {
			return tv.Task, nil
		}
		if strings.HasPrefix(tv.Task.ID, input) || strings.EqualFold(tv.Task.Title, input) {
			matches = append(matches, tv.Task)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("task not found in %q: %q", view.Sequence.Title, input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("task %q is ambiguous (%d matches)", input, len(matches))
	}
}

// loadSequence resolves input and returns its full view.
func loadSequence(ctx context.Context, a *App, input string) (*app.SequenceView, error) {
	id, err := resolveSequenceID(ctx, a, input)
	if err != nil {
		return nil, err
	}
	return a.Sequences.Get(ctx, id)
}

// resolveTasks resolves every input against view, preserving order.
func resolveTasks(view *app.SequenceView, inputs []string) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0, len(inputs))
	for _, in := range inputs {
		t, err := resolveTask(view, in)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func taskIDs(tasks []*domain.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

// resolveMemberID accepts an id, id prefix or case-insensitive name.
func resolveMemberID(ctx context.Context, a *App, input string) (string, error) {
	members, err := a.Members.List(ctx, a.familyID())
	if err != nil {
		return "", err
	}
	var matches []string
	for _, m := range members {
		if m.ID == input {
			return m.ID, nil
		}
		if strings.HasPrefix(m.ID, input) || strings.EqualFold(m.Name, input) {
			matches = append(matches, m.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("member not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("member %q is ambiguous (%d matches)", input, len(matches))
	}
}
