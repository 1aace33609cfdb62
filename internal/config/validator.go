package config

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskseq/internal/domain"
)

// ValidationError is one rejected setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	validScopes     = []string{"next", "actionable"}
)

// Validate returns every invalid setting. A nil result means the
// configuration is usable.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, ValidationError{Field: "db_path", Value: c.DBPath, Message: "must not be empty"})
	}
	if !oneOf(strings.ToLower(c.Log.Level), validLogLevels) {
		errs = append(errs, ValidationError{Field: "log.level", Value: c.Log.Level, Message: "must be one of " + strings.Join(validLogLevels, ", ")})
	}
	if !oneOf(strings.ToLower(c.Log.Format), validLogFormats) {
		errs = append(errs, ValidationError{Field: "log.format", Value: c.Log.Format, Message: "must be text or json"})
	}
	if c.Identity.FamilyID == "" {
		errs = append(errs, ValidationError{Field: "identity.family_id", Value: c.Identity.FamilyID, Message: "must not be empty"})
	}
	if !oneOf(c.Reminders.Scope, validScopes) {
		errs = append(errs, ValidationError{Field: "reminders.scope", Value: c.Reminders.Scope, Message: "must be next or actionable"})
	}
	if len(c.Delegation.EligibleRoles) == 0 {
		errs = append(errs, ValidationError{Field: "delegation.eligible_roles", Value: c.Delegation.EligibleRoles, Message: "must name at least one role"})
	}
	for _, r := range c.Delegation.EligibleRoles {
		if !domain.ValidMemberRoles[strings.ToLower(strings.TrimSpace(r))] {
			errs = append(errs, ValidationError{Field: "delegation.eligible_roles", Value: r, Message: "must be parent or child"})
		}
	}
	return errs
}

// Roles returns the eligible roles as domain values.
func (d DelegationConfig) Roles() []domain.MemberRole {
	out := make([]domain.MemberRole, 0, len(d.EligibleRoles))
	for _, r := range d.EligibleRoles {
		out = append(out, domain.MemberRole(strings.ToLower(strings.TrimSpace(r))))
	}
	return out
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
