package domain

import (
	"strings"
	"time"
)

const (
	MinSkillLevel = 1
	MaxSkillLevel = 5
)

// Skill is a self-reported competence. Level runs 1–5.
type Skill struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Level    int      `json:"level"`
}

// Matches reports whether the skill covers the given task category, either
// directly or through one of its tags.
func (s Skill) Matches(category string) bool {
	if category == "" {
		return false
	}
	if strings.EqualFold(s.Category, category) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.EqualFold(tag, category) {
			return true
		}
	}
	return false
}

// Member is a household member that tasks can be delegated to.
type Member struct {
	ID        string
	FamilyID  string
	Name      string
	Role      MemberRole
	Skills    []Skill
	CreatedAt time.Time
}

// SkillFor returns the first skill matching category.
func (m *Member) SkillFor(category string) (Skill, bool) {
	for _, s := range m.Skills {
		if s.Matches(category) {
			return s, true
		}
	}
	return Skill{}, false
}

// SetSkill replaces the skill with the same category or appends a new one.
func (m *Member) SetSkill(skill Skill) error {
	if skill.Category == "" {
		return validationErrorf("skill category is required")
	}
	if skill.Level < MinSkillLevel || skill.Level > MaxSkillLevel {
		return validationErrorf("skill level %d out of range %d-%d", skill.Level, MinSkillLevel, MaxSkillLevel)
	}
	for i := range m.Skills {
		if strings.EqualFold(m.Skills[i].Category, skill.Category) {
			m.Skills[i] = skill
			return nil
		}
	}
	m.Skills = append(m.Skills, skill)
	return nil
}
