package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/domain"
)

// SQLiteMemberRepo implements MemberRepo using a SQLite database.
type SQLiteMemberRepo struct {
	db db.DBTX
}

// NewSQLiteMemberRepo creates a new SQLiteMemberRepo.
func NewSQLiteMemberRepo(db db.DBTX) *SQLiteMemberRepo {
	return &SQLiteMemberRepo{db: db}
}

func (r *SQLiteMemberRepo) Create(ctx context.Context, m *domain.Member) error {
	skills, err := toJSONColumn(m.Skills)
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO members (id, family_id, name, role, skills, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.FamilyID, m.Name, string(m.Role), skills, formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting member: %w", err)
	}
	return nil
}

func (r *SQLiteMemberRepo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, family_id, name, role, skills, created_at FROM members WHERE id = ?`, id)
	return scanMember(row)
}

// ListByFamily returns members in creation order, which is the candidate
// order the delegation tie-break relies on.
func (r *SQLiteMemberRepo) ListByFamily(ctx context.Context, familyID string) ([]*domain.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, family_id, name, role, skills, created_at FROM members
			WHERE family_id = ? ORDER BY created_at, rowid`, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}
	return members, nil
}

func (r *SQLiteMemberRepo) Update(ctx context.Context, m *domain.Member) error {
	skills, err := toJSONColumn(m.Skills)
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET name = ?, role = ?, skills = ? WHERE id = ?`,
		m.Name, string(m.Role), skills, m.ID)
	if err != nil {
		return fmt.Errorf("updating member: %w", err)
	}
	return rowsAffectedOrNotFound(res, "member")
}

func (r *SQLiteMemberRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting member: %w", err)
	}
	return rowsAffectedOrNotFound(res, "member")
}

func scanMember(row rowScanner) (*domain.Member, error) {
	var m domain.Member
	var role, skills, createdAt string
	if err := row.Scan(&m.ID, &m.FamilyID, &m.Name, &role, &skills, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning member: %w", err)
	}
	m.Role = domain.MemberRole(role)
	if err := fromJSONColumn(skills, &m.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	if len(m.Skills) == 0 {
		m.Skills = nil
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = t
	return &m, nil
}
