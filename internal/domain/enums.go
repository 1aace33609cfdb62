package domain

import "strings"

type SequenceStatus string

const (
	SequenceActive    SequenceStatus = "active"
	SequenceCompleted SequenceStatus = "completed"
	SequenceArchived  SequenceStatus = "archived"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type ReminderStrategy string

const (
	ReminderStandard ReminderStrategy = "standard"
	ReminderAdaptive ReminderStrategy = "adaptive"
	ReminderMinimal  ReminderStrategy = "minimal"
)

type DelegationStrategy string

const (
	DelegationManual DelegationStrategy = "manual"
	DelegationAuto   DelegationStrategy = "auto"
)

type MemberRole string

const (
	RoleParent MemberRole = "parent"
	RoleChild  MemberRole = "child"
)

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[string]bool{
	"low": true, "medium": true, "high": true, "critical": true,
}

// ValidReminderStrategies is the canonical set of accepted reminder strategy strings.
var ValidReminderStrategies = map[string]bool{
	"standard": true, "adaptive": true, "minimal": true,
}

// ValidDelegationStrategies is the canonical set of accepted delegation strategy strings.
var ValidDelegationStrategies = map[string]bool{
	"manual": true, "auto": true,
}

// ValidMemberRoles is the canonical set of accepted member role strings.
var ValidMemberRoles = map[string]bool{
	"parent": true, "child": true,
}

// ParsePriority normalizes s into a Priority. Empty input yields "" so that
// callers can fall back to an inherited value.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if !ValidPriorities[s] {
		return "", validationErrorf("invalid priority %q (want low, medium, high or critical)", s)
	}
	return Priority(s), nil
}

// ParseReminderStrategy normalizes s into a ReminderStrategy.
func ParseReminderStrategy(s string) (ReminderStrategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if !ValidReminderStrategies[s] {
		return "", validationErrorf("invalid reminder strategy %q (want standard, adaptive or minimal)", s)
	}
	return ReminderStrategy(s), nil
}

// ParseDelegationStrategy normalizes s into a DelegationStrategy.
func ParseDelegationStrategy(s string) (DelegationStrategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if !ValidDelegationStrategies[s] {
		return "", validationErrorf("invalid delegation strategy %q (want manual or auto)", s)
	}
	return DelegationStrategy(s), nil
}

// ParseMemberRole normalizes s into a MemberRole.
func ParseMemberRole(s string) (MemberRole, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !ValidMemberRoles[s] {
		return "", validationErrorf("invalid member role %q (want parent or child)", s)
	}
	return MemberRole(s), nil
}
