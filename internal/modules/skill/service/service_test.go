package service_test

import (
	"context"
	"testing"

	profileRepo "anoa.com/devsearch/internal/modules/profile/repository"
	"anoa.com/devsearch/internal/modules/skill/dto"
	"anoa.com/devsearch/internal/modules/skill/repository"
	"anoa.com/devsearch/internal/modules/skill/service"
	"anoa.com/devsearch/internal/testutil"
	"anoa.com/devsearch/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillLifecycle(t *testing.T) {
	db := testutil.NewDB(t, nil)
	indexer := testutil.NewIndexer()
	svc := service.NewSkillService(repository.NewSkillRepository(db), profileRepo.NewProfileRepository(db), indexer)
	ctx := context.Background()

	alice, profile := testutil.CreateUser(t, db, "alice")
	bob, _ := testutil.CreateUser(t, db, "bob")

	skill, err := svc.AddSkill(ctx, alice.ID, dto.SkillInput{Name: " Go ", Description: "<i>daily</i>"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, skill.OwnerID)
	assert.Equal(t, "Go", skill.Name)
	assert.Equal(t, "daily", skill.Description)
	assert.Contains(t, indexer.Profiles, profile.ID.String())

	_, err = svc.UpdateSkill(ctx, bob.ID, skill.ID, dto.SkillInput{Name: "Rust"})
	assert.Equal(t, 404, apperror.MapErrorToStatus(err))
	assert.Equal(t, 404, apperror.MapErrorToStatus(svc.DeleteSkill(ctx, bob.ID, skill.ID)))

	updated, err := svc.UpdateSkill(ctx, alice.ID, skill.ID, dto.SkillInput{Name: "Go"})
	require.NoError(t, err)
	assert.Empty(t, updated.Description)

	require.NoError(t, svc.DeleteSkill(ctx, alice.ID, skill.ID))
	assert.Equal(t, 404, apperror.MapErrorToStatus(svc.DeleteSkill(ctx, alice.ID, skill.ID)))

	_, err = svc.AddSkill(ctx, uuid.New(), dto.SkillInput{Name: "Go"})
	assert.Equal(t, 401, apperror.MapErrorToStatus(err))
}
