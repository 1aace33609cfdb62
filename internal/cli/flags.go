package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/spf13/pflag"
)

// enumFlag is a string flag restricted to a fixed set of values.
type enumFlag struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*enumFlag)(nil)

func newEnumFlag(def string, allowed ...string) *enumFlag {
	return &enumFlag{value: def, allowed: allowed}
}

func (f *enumFlag) String() string { return f.value }

func (f *enumFlag) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range f.allowed {
		if v == a {
			f.value = v
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(f.allowed, ", "))
}

func (f *enumFlag) Type() string { return strings.Join(f.allowed, "|") }

func priorityFlag() *enumFlag {
	return newEnumFlag("", "low", "medium", "high", "critical")
}

func reminderFlag() *enumFlag {
	return newEnumFlag("", "standard", "adaptive", "minimal")
}

func delegationFlag() *enumFlag {
	return newEnumFlag("", "manual", "auto")
}

func roleFlag() *enumFlag {
	return newEnumFlag(string(domain.RoleParent), "parent", "child")
}
