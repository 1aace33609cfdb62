package depgraph

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskseq/internal/domain"
)

// DependencyError describes a rejected dependency set. It unwraps to
// domain.ErrInvalidDependency so callers can match on the sentinel.
type DependencyError struct {
	TaskID string
	Msg    string
}

func (e *DependencyError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return domain.ErrInvalidDependency.Error()
	}
	return fmt.Sprintf("%s: %s", domain.ErrInvalidDependency.Error(), e.Msg)
}

func (e *DependencyError) Unwrap() error { return domain.ErrInvalidDependency }

func invalidf(taskID, format string, args ...any) error {
	return &DependencyError{TaskID: taskID, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	msg := "cycle"
	if len(path) > 0 {
		msg = "cycle: " + strings.Join(path, " -> ")
	}
	return &DependencyError{Msg: msg}
}
