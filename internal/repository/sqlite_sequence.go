package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/domain"
)

// SQLiteSequenceRepo implements SequenceRepo using a SQLite database.
type SQLiteSequenceRepo struct {
	db db.DBTX
}

// NewSQLiteSequenceRepo creates a new SQLiteSequenceRepo.
func NewSQLiteSequenceRepo(db db.DBTX) *SQLiteSequenceRepo {
	return &SQLiteSequenceRepo{db: db}
}

const sequenceColumns = `id, family_id, created_by, title, description, category, status, completion_pct,
	due_date, priority, reminder_strategy, delegation_strategy, tags, last_updated_by,
	completed_at, created_at, updated_at`

func (r *SQLiteSequenceRepo) GetByID(ctx context.Context, id string) (*domain.Sequence, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sequenceColumns+` FROM sequences WHERE id = ?`, id)
	s, err := scanSequence(row)
	if err != nil {
		return nil, err
	}
	if s.TaskIDs, err = r.taskIDs(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// Save inserts the sequence or overwrites every mutable column of an
// existing row. TaskIDs are derived from the tasks table and not written.
func (r *SQLiteSequenceRepo) Save(ctx context.Context, s *domain.Sequence) error {
	tags, err := toJSONColumn(s.Tags)
	if err != nil {
		return fmt.Errorf("encoding sequence tags: %w", err)
	}
	query := `INSERT INTO sequences (` + sequenceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			status = excluded.status,
			completion_pct = excluded.completion_pct,
			due_date = excluded.due_date,
			priority = excluded.priority,
			reminder_strategy = excluded.reminder_strategy,
			delegation_strategy = excluded.delegation_strategy,
			tags = excluded.tags,
			last_updated_by = excluded.last_updated_by,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.FamilyID,
		s.CreatedBy,
		s.Title,
		s.Description,
		s.Category,
		string(s.Status),
		s.CompletionPct,
		nullableTimeToString(s.DueDate, time.RFC3339),
		string(s.Priority),
		string(s.ReminderStrategy),
		string(s.DelegationStrategy),
		tags,
		s.LastUpdatedBy,
		nullableTimeToString(s.CompletedAt, time.RFC3339),
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving sequence: %w", err)
	}
	return nil
}

// Delete removes the sequence; its tasks, dependencies and progress history
// go with it through ON DELETE CASCADE.
func (r *SQLiteSequenceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sequences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting sequence: %w", err)
	}
	return rowsAffectedOrNotFound(res, "sequence")
}

func (r *SQLiteSequenceRepo) ListByFamily(ctx context.Context, familyID string, includeArchived bool) ([]*domain.Sequence, error) {
	query := `SELECT ` + sequenceColumns + ` FROM sequences WHERE family_id = ?`
	if !includeArchived {
		query += ` AND status <> 'archived'`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing sequences: %w", err)
	}
	var sequences []*domain.Sequence
	for rows.Next() {
		s, err := scanSequence(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		sequences = append(sequences, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating sequences: %w", err)
	}
	rows.Close()

	// Task ids are loaded after the cursor is closed so a single-connection
	// pool is never asked for a second statement.
	for _, s := range sequences {
		if s.TaskIDs, err = r.taskIDs(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return sequences, nil
}

func (r *SQLiteSequenceRepo) AppendProgress(ctx context.Context, sample domain.ProgressSample) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sequence_progress (sequence_id, recorded_at, pct) VALUES (?, ?, ?)`,
		sample.SequenceID, formatTime(sample.RecordedAt), sample.Pct)
	if err != nil {
		return fmt.Errorf("appending progress sample: %w", err)
	}
	return nil
}

func (r *SQLiteSequenceRepo) ListProgress(ctx context.Context, sequenceID string) ([]domain.ProgressSample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sequence_id, recorded_at, pct FROM sequence_progress WHERE sequence_id = ? ORDER BY id`, sequenceID)
	if err != nil {
		return nil, fmt.Errorf("listing progress: %w", err)
	}
	defer rows.Close()

	var samples []domain.ProgressSample
	for rows.Next() {
		sample, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progress: %w", err)
	}
	return samples, nil
}

// LatestProgress returns the most recent sample, or nil if the history is empty.
func (r *SQLiteSequenceRepo) LatestProgress(ctx context.Context, sequenceID string) (*domain.ProgressSample, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT sequence_id, recorded_at, pct FROM sequence_progress WHERE sequence_id = ? ORDER BY id DESC LIMIT 1`, sequenceID)
	sample, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

func (r *SQLiteSequenceRepo) taskIDs(ctx context.Context, sequenceID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM tasks WHERE sequence_id = ? ORDER BY position, created_at, id`, sequenceID)
	if err != nil {
		return nil, fmt.Errorf("listing sequence task ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning task id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task ids: %w", err)
	}
	return ids, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSequence(row rowScanner) (*domain.Sequence, error) {
	var s domain.Sequence
	var status, priority, reminder, delegation, tags, createdAt, updatedAt string
	var dueDate, completedAt sql.NullString

	err := row.Scan(
		&s.ID, &s.FamilyID, &s.CreatedBy, &s.Title, &s.Description, &s.Category,
		&status, &s.CompletionPct, &dueDate, &priority, &reminder, &delegation,
		&tags, &s.LastUpdatedBy, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sequence: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning sequence: %w", err)
	}

	s.Status = domain.SequenceStatus(status)
	s.Priority = domain.Priority(priority)
	s.ReminderStrategy = domain.ReminderStrategy(reminder)
	s.DelegationStrategy = domain.DelegationStrategy(delegation)
	s.DueDate = parseNullableTime(dueDate, time.RFC3339)
	s.CompletedAt = parseNullableTime(completedAt, time.RFC3339)
	if err := fromJSONColumn(tags, &s.Tags); err != nil {
		return nil, fmt.Errorf("decoding sequence tags: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanProgress(row rowScanner) (domain.ProgressSample, error) {
	var sample domain.ProgressSample
	var recordedAt string
	if err := row.Scan(&sample.SequenceID, &recordedAt, &sample.Pct); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sample, err
		}
		return sample, fmt.Errorf("scanning progress sample: %w", err)
	}
	t, err := parseTime(recordedAt)
	if err != nil {
		return sample, err
	}
	sample.RecordedAt = t
	return sample, nil
}
