package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskseq/internal/db"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/repository"
	"github.com/google/uuid"
)

type memberService struct {
	members repository.MemberRepo
	uow     db.UnitOfWork
}

func NewMemberService(members repository.MemberRepo, uow db.UnitOfWork) MemberService {
	return &memberService{members: members, uow: uow}
}

func (s *memberService) Create(ctx context.Context, m *domain.Member) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("%w: member name is required", domain.ErrValidation)
	}
	if m.FamilyID == "" {
		return fmt.Errorf("%w: family id is required", domain.ErrValidation)
	}
	if m.Role == "" {
		m.Role = domain.RoleParent
	}
	if !domain.ValidMemberRoles[string(m.Role)] {
		return fmt.Errorf("%w: invalid member role %q", domain.ErrValidation, m.Role)
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()
	return s.members.Create(ctx, m)
}

func (s *memberService) Get(ctx context.Context, id string) (*domain.Member, error) {
	return s.members.GetByID(ctx, id)
}

func (s *memberService) List(ctx context.Context, familyID string) ([]*domain.Member, error) {
	return s.members.ListByFamily(ctx, familyID)
}

// SetSkill adds the skill or replaces the member's skill in the same category.
func (s *memberService) SetSkill(ctx context.Context, memberID string, skill domain.Skill) (*domain.Member, error) {
	var m *domain.Member
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txMembers := repository.NewSQLiteMemberRepo(tx)

		var err error
		m, err = txMembers.GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if err := m.SetSkill(skill); err != nil {
			return err
		}
		return txMembers.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *memberService) Delete(ctx context.Context, id string) error {
	return s.members.Delete(ctx, id)
}
