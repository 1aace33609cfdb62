package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberRepo_CreateGetUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMemberRepo(db)
	ctx := context.Background()

	m := testutil.NewTestMember("Alex", testutil.WithSkill("Home", 4))
	require.NoError(t, repo.Create(ctx, m))

	fetched, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", fetched.Name)
	assert.Equal(t, domain.RoleParent, fetched.Role)
	require.Len(t, fetched.Skills, 1)
	assert.Equal(t, 4, fetched.Skills[0].Level)

	require.NoError(t, fetched.SetSkill(domain.Skill{Category: "Travel", Tags: []string{"vacation"}, Level: 2}))
	require.NoError(t, repo.Update(ctx, fetched))

	again, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, again.Skills, 2)
	assert.Equal(t, []string{"vacation"}, again.Skills[1].Tags)
}

func TestMemberRepo_ListByFamilyKeepsCreationOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMemberRepo(db)
	ctx := context.Background()

	first := testutil.NewTestMember("Robin")
	second := testutil.NewTestMember("Casey")
	kid := testutil.NewTestMember("Jo", testutil.WithRole(domain.RoleChild))
	for _, m := range []*domain.Member{first, second, kid} {
		require.NoError(t, repo.Create(ctx, m))
	}

	list, err := repo.ListByFamily(ctx, testutil.FamilyID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, domain.RoleChild, list[2].Role)
}

func TestMemberRepo_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMemberRepo(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "ghost"), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.Member{ID: "ghost", Role: domain.RoleParent}), ErrNotFound)
}
