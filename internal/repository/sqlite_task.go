package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database. Dependency sets
// live in task_dependencies and are loaded alongside every task.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(db db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

const taskColumns = `t.id, t.sequence_id, t.family_id, t.created_by, t.title, t.description, t.category,
	t.priority, t.due_date, t.assigned_to, t.position, t.completed, t.completed_at, t.completed_by,
	t.estimated_min, t.subtasks, t.reminder_strategy, t.reminder_last_sent, t.reminder_count,
	t.snooze_count, t.notes, t.tags, t.created_at, t.updated_at`

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	deps, err := r.loadDependencies(ctx, `WHERE task_id = ?`, id)
	if err != nil {
		return nil, err
	}
	t.Dependencies = deps[t.ID]
	return t, nil
}

// Save upserts the task row and replaces its dependency set. Callers that
// need the two writes to be atomic run Save inside a UnitOfWork.
func (r *SQLiteTaskRepo) Save(ctx context.Context, t *domain.Task) error {
	subtasks, err := toJSONColumn(t.SubTasks)
	if err != nil {
		return fmt.Errorf("encoding subtasks: %w", err)
	}
	tags, err := toJSONColumn(t.Tags)
	if err != nil {
		return fmt.Errorf("encoding task tags: %w", err)
	}

	query := `INSERT INTO tasks (id, sequence_id, family_id, created_by, title, description, category,
			priority, due_date, assigned_to, position, completed, completed_at, completed_by,
			estimated_min, subtasks, reminder_strategy, reminder_last_sent, reminder_count,
			snooze_count, notes, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			priority = excluded.priority,
			due_date = excluded.due_date,
			assigned_to = excluded.assigned_to,
			position = excluded.position,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			completed_by = excluded.completed_by,
			estimated_min = excluded.estimated_min,
			subtasks = excluded.subtasks,
			reminder_strategy = excluded.reminder_strategy,
			reminder_last_sent = excluded.reminder_last_sent,
			reminder_count = excluded.reminder_count,
			snooze_count = excluded.snooze_count,
			notes = excluded.notes,
			tags = excluded.tags,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.SequenceID,
		t.FamilyID,
		t.CreatedBy,
		t.Title,
		t.Description,
		t.Category,
		string(t.Priority),
		nullableTimeToString(t.DueDate, time.RFC3339),
		t.AssignedTo,
		t.Position,
		boolToInt(t.Completed),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
		t.CompletedBy,
		t.EstimatedMin,
		subtasks,
		string(t.Reminder.Strategy),
		nullableTimeToString(t.Reminder.LastSentAt, time.RFC3339),
		t.Reminder.Count,
		t.Reminder.SnoozeCount,
		t.Notes,
		tags,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving task: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_dependencies WHERE task_id = ?`, t.ID); err != nil {
		return fmt.Errorf("clearing task dependencies: %w", err)
	}
	for _, dep := range domain.NormalizeIDSet(t.Dependencies) {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO task_dependencies (task_id, depends_on_id) VALUES (?, ?)`, t.ID, dep); err != nil {
			return fmt.Errorf("inserting task dependency %s -> %s: %w", t.ID, dep, err)
		}
	}
	return nil
}

// Delete removes the task. Edges pointing at it from sibling tasks are
// removed by the foreign key cascade.
func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return rowsAffectedOrNotFound(res, "task")
}

func (r *SQLiteTaskRepo) ListBySequence(ctx context.Context, sequenceID string) ([]*domain.Task, error) {
	return r.list(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.sequence_id = ? ORDER BY t.position, t.created_at, t.id`,
		`WHERE task_id IN (SELECT id FROM tasks WHERE sequence_id = ?)`,
		sequenceID)
}

func (r *SQLiteTaskRepo) ListOpenByFamily(ctx context.Context, familyID string) ([]*domain.Task, error) {
	return r.list(ctx,
		`SELECT `+taskColumns+` FROM tasks t
			JOIN sequences s ON s.id = t.sequence_id
			WHERE t.family_id = ? AND t.completed = 0 AND s.status <> 'archived'
			ORDER BY t.sequence_id, t.position, t.id`,
		`WHERE task_id IN (SELECT id FROM tasks WHERE family_id = ? AND completed = 0)`,
		familyID)
}

func (r *SQLiteTaskRepo) ListByFamily(ctx context.Context, familyID string) ([]*domain.Task, error) {
	return r.list(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.family_id = ? ORDER BY t.sequence_id, t.position, t.id`,
		`WHERE task_id IN (SELECT id FROM tasks WHERE family_id = ?)`,
		familyID)
}

func (r *SQLiteTaskRepo) list(ctx context.Context, query, depFilter string, arg any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	rows.Close()

	if len(tasks) == 0 {
		return tasks, nil
	}
	deps, err := r.loadDependencies(ctx, depFilter, arg)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		t.Dependencies = deps[t.ID]
	}
	return tasks, nil
}

// loadDependencies returns dependency sets keyed by task id, each sorted.
func (r *SQLiteTaskRepo) loadDependencies(ctx context.Context, filter string, arg any) (map[string][]string, error) {
	query := `SELECT task_id, depends_on_id FROM task_dependencies ` + filter + ` ORDER BY task_id, depends_on_id`
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("loading task dependencies: %w", err)
	}
	defer rows.Close()

	deps := make(map[string][]string)
	for rows.Next() {
		var taskID, dependsOn string
		if err := rows.Scan(&taskID, &dependsOn); err != nil {
			return nil, fmt.Errorf("scanning task dependency: %w", err)
		}
		deps[taskID] = append(deps[taskID], dependsOn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task dependencies: %w", err)
	}
	return deps, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var priority, subtasks, reminderStrategy, tags, createdAt, updatedAt string
	var completed int
	var dueDate, completedAt, lastSent sql.NullString

	err := row.Scan(
		&t.ID, &t.SequenceID, &t.FamilyID, &t.CreatedBy, &t.Title, &t.Description, &t.Category,
		&priority, &dueDate, &t.AssignedTo, &t.Position, &completed, &completedAt, &t.CompletedBy,
		&t.EstimatedMin, &subtasks, &reminderStrategy, &lastSent, &t.Reminder.Count,
		&t.Reminder.SnoozeCount, &t.Notes, &tags, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.Priority = domain.Priority(priority)
	t.Completed = intToBool(completed)
	t.DueDate = parseNullableTime(dueDate, time.RFC3339)
	t.CompletedAt = parseNullableTime(completedAt, time.RFC3339)
	t.Reminder.Strategy = domain.ReminderStrategy(strings.TrimSpace(reminderStrategy))
	t.Reminder.LastSentAt = parseNullableTime(lastSent, time.RFC3339)
	if err := fromJSONColumn(subtasks, &t.SubTasks); err != nil {
		return nil, fmt.Errorf("decoding subtasks: %w", err)
	}
	if err := fromJSONColumn(tags, &t.Tags); err != nil {
		return nil, fmt.Errorf("decoding task tags: %w", err)
	}
	if len(t.SubTasks) == 0 {
		t.SubTasks = nil
	}
	if len(t.Tags) == 0 {
		t.Tags = nil
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
