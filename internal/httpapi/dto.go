package httpapi

import (
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/depgraph"
	"github.com/alexanderramin/taskseq/internal/domain"
)

type sequenceJSON struct {
	ID                 string     `json:"id"`
	FamilyID           string     `json:"family_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Category           string     `json:"category"`
	Status             string     `json:"status"`
	CompletionPct      float64    `json:"completion_pct"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	Priority           string     `json:"priority"`
	ReminderStrategy   string     `json:"reminder_strategy"`
	DelegationStrategy string     `json:"delegation_strategy"`
	TaskIDs            []string   `json:"task_ids"`
	Tags               []string   `json:"tags,omitempty"`
	LastUpdatedBy      string     `json:"last_updated_by,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type taskJSON struct {
	ID                  string           `json:"id"`
	SequenceID          string           `json:"sequence_id"`
	Title               string           `json:"title"`
	Description         string           `json:"description,omitempty"`
	Category            string           `json:"category"`
	Priority            string           `json:"priority"`
	Status              string           `json:"status"`
	DueDate             *time.Time       `json:"due_date,omitempty"`
	AssignedTo          string           `json:"assigned_to,omitempty"`
	Position            int              `json:"position"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
	CompletedBy         string           `json:"completed_by,omitempty"`
	EstimatedMin        int              `json:"estimated_min"`
	SubTasks            []domain.SubTask `json:"subtasks,omitempty"`
	Dependencies        []string         `json:"dependencies"`
	ReminderStrategy    string           `json:"reminder_strategy,omitempty"`
	ReminderCount       int              `json:"reminder_count"`
	LastReminderAt      *time.Time       `json:"last_reminder_at,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	Tags                []string         `json:"tags,omitempty"`
	Blocked             *bool            `json:"blocked,omitempty"`
	PendingDependencies []string         `json:"pending_dependencies,omitempty"`
}

type memberJSON struct {
	ID       string         `json:"id"`
	FamilyID string         `json:"family_id"`
	Name     string         `json:"name"`
	Role     string         `json:"role"`
	Skills   []domain.Skill `json:"skills"`
}

type sequenceViewJSON struct {
	Sequence sequenceJSON   `json:"sequence"`
	Tasks    []taskJSON     `json:"tasks"`
	Next     *taskJSON      `json:"next,omitempty"`
	State    depgraph.State `json:"state"`
}

type overviewJSON struct {
	Sequence sequenceJSON   `json:"sequence"`
	Next     *taskJSON      `json:"next,omitempty"`
	State    depgraph.State `json:"state"`
}

type nextJSON struct {
	SequenceID string         `json:"sequence_id"`
	State      depgraph.State `json:"state"`
	Task       *taskJSON      `json:"task"`
}

type summaryJSON struct {
	SequenceID     string     `json:"sequence_id"`
	CompletedCount int        `json:"completed_count"`
	TotalCount     int        `json:"total_count"`
	Pct            float64    `json:"pct"`
	Status         string     `json:"status"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Healed         bool       `json:"healed"`
}

type sampleJSON struct {
	RecordedAt time.Time `json:"recorded_at"`
	Pct        float64   `json:"pct"`
}

type reminderJSON struct {
	TaskID        string     `json:"task_id"`
	SequenceID    string     `json:"sequence_id"`
	SequenceTitle string     `json:"sequence_title"`
	TaskTitle     string     `json:"task_title"`
	AssignedTo    string     `json:"assigned_to,omitempty"`
	Message       string     `json:"message"`
	Priority      string     `json:"priority"`
	DueDate       *time.Time `json:"due_date,omitempty"`
}

type recommendationJSON struct {
	TaskID       string  `json:"task_id"`
	TaskTitle    string  `json:"task_title"`
	AssigneeID   string  `json:"assignee_id"`
	AssigneeName string  `json:"assignee_name"`
	Score        float64 `json:"score"`
	Factor       string  `json:"factor"`
	Reason       string  `json:"reason"`
}

func toSequenceJSON(s *domain.Sequence) sequenceJSON {
	ids := s.TaskIDs
	if ids == nil {
		ids = []string{}
	}
	return sequenceJSON{
		ID:                 s.ID,
		FamilyID:           s.FamilyID,
		Title:              s.Title,
		Description:        s.Description,
		Category:           s.Category,
		Status:             string(s.Status),
		CompletionPct:      s.CompletionPct,
		DueDate:            s.DueDate,
		Priority:           string(s.Priority),
		ReminderStrategy:   string(s.ReminderStrategy),
		DelegationStrategy: string(s.DelegationStrategy),
		TaskIDs:            ids,
		Tags:               s.Tags,
		LastUpdatedBy:      s.LastUpdatedBy,
		CompletedAt:        s.CompletedAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func toTaskJSON(t *domain.Task) taskJSON {
	deps := t.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return taskJSON{
		ID:               t.ID,
		SequenceID:       t.SequenceID,
		Title:            t.Title,
		Description:      t.Description,
		Category:         t.Category,
		Priority:         string(t.Priority),
		Status:           string(t.Status()),
		DueDate:          t.DueDate,
		AssignedTo:       t.AssignedTo,
		Position:         t.Position,
		CompletedAt:      t.CompletedAt,
		CompletedBy:      t.CompletedBy,
		EstimatedMin:     t.EstimatedMin,
		SubTasks:         t.SubTasks,
		Dependencies:     deps,
		ReminderStrategy: string(t.Reminder.Strategy),
		ReminderCount:    t.Reminder.Count,
		LastReminderAt:   t.Reminder.LastSentAt,
		Notes:            t.Notes,
		Tags:             t.Tags,
	}
}

func optionalTaskJSON(t *domain.Task) *taskJSON {
	if t == nil {
		return nil
	}
	out := toTaskJSON(t)
	return &out
}

func toSequenceViewJSON(v *app.SequenceView) sequenceViewJSON {
	out := sequenceViewJSON{
		Sequence: toSequenceJSON(v.Sequence),
		Tasks:    make([]taskJSON, 0, len(v.Tasks)),
		Next:     optionalTaskJSON(v.Next),
		State:    v.State,
	}
	for _, tv := range v.Tasks {
		tj := toTaskJSON(tv.Task)
		blocked := tv.Blocked
		tj.Blocked = &blocked
		tj.PendingDependencies = tv.PendingDependencies
		out.Tasks = append(out.Tasks, tj)
	}
	return out
}

func toMemberJSON(m *domain.Member) memberJSON {
	skills := m.Skills
	if skills == nil {
		skills = []domain.Skill{}
	}
	return memberJSON{ID: m.ID, FamilyID: m.FamilyID, Name: m.Name, Role: string(m.Role), Skills: skills}
}

func toReminderJSON(r app.ReminderToSend) reminderJSON {
	return reminderJSON{
		TaskID:        r.TaskID,
		SequenceID:    r.SequenceID,
		SequenceTitle: r.SequenceTitle,
		TaskTitle:     r.TaskTitle,
		AssignedTo:    r.AssignedTo,
		Message:       r.Message,
		Priority:      string(r.Priority),
		DueDate:       r.DueDate,
	}
}

func toRecommendationJSON(r app.Recommendation) recommendationJSON {
	return recommendationJSON(r)
}

// taskBody is the JSON shape accepted by POST /sequences/{id}/tasks.
type taskBody struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	Priority         string   `json:"priority"`
	DueDate          string   `json:"due_date"`
	AssignedTo       string   `json:"assigned_to"`
	EstimatedMin     *int     `json:"estimated_min"`
	SubTasks         []string `json:"subtasks"`
	DependsOn        []string `json:"depends_on"`
	ReminderStrategy string   `json:"reminder_strategy"`
	Notes            string   `json:"notes"`
	Tags             []string `json:"tags"`
}

// taskPatch is the JSON shape accepted by PATCH /tasks/{id}. A due_date of
// "" clears the date.
type taskPatch struct {
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	Category         *string   `json:"category"`
	Priority         *string   `json:"priority"`
	DueDate          *string   `json:"due_date"`
	AssignedTo       *string   `json:"assigned_to"`
	EstimatedMin     *int      `json:"estimated_min"`
	Dependencies     *[]string `json:"dependencies"`
	Completed        *bool     `json:"completed"`
	ReminderStrategy *string   `json:"reminder_strategy"`
	Notes            *string   `json:"notes"`
	Tags             *[]string `json:"tags"`
}

type sequencePatch struct {
	Title              *string   `json:"title"`
	Description        *string   `json:"description"`
	Category           *string   `json:"category"`
	Priority           *string   `json:"priority"`
	DueDate            *string   `json:"due_date"`
	ReminderStrategy   *string   `json:"reminder_strategy"`
	DelegationStrategy *string   `json:"delegation_strategy"`
	Tags               *[]string `json:"tags"`
}

type memberBody struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
