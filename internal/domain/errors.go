package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDependency marks a dependency that points outside its
	// sequence, at the task itself, or closes a cycle.
	ErrInvalidDependency = errors.New("invalid dependency")

	// ErrValidation marks caller input that fails domain validation.
	ErrValidation = errors.New("validation failed")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
