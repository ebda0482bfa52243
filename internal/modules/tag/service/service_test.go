package service_test

import (
	"context"
	"testing"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/modules/tag/dto"
	"anoa.com/devsearch/internal/modules/tag/repository"
	"anoa.com/devsearch/internal/modules/tag/service"
	"anoa.com/devsearch/internal/testutil"
	"anoa.com/devsearch/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService(t *testing.T) {
	db := testutil.NewDB(t, nil)
	svc := service.NewTagService(repository.NewTagRepository(db))
	ctx := context.Background()

	_, err := svc.CreateTag(ctx, dto.CreateTagInput{Name: "  "})
	var fieldErr *apperror.FieldError
	require.ErrorAs(t, err, &fieldErr)

	golang, err := svc.CreateTag(ctx, dto.CreateTagInput{Name: " Golang "})
	require.NoError(t, err)
	assert.Equal(t, "Golang", golang.Name)

	_, err = svc.CreateTag(ctx, dto.CreateTagInput{Name: "Golang"})
	assert.Equal(t, 409, apperror.MapErrorToStatus(err))

	_, err = svc.CreateTag(ctx, dto.CreateTagInput{Name: "Django"})
	require.NoError(t, err)

	all, err := svc.ListTags(ctx, dto.TagFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Django", all[0].Name)

	found, err := svc.ListTags(ctx, dto.TagFilter{Search: "gol"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, golang.ID, found[0].ID)

	none, err := svc.ListTags(ctx, dto.TagFilter{Search: "zig"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDeleteTagDetachesProjects(t *testing.T) {
	db := testutil.NewDB(t, nil)
	svc := service.NewTagService(repository.NewTagRepository(db))
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, dto.CreateTagInput{Name: "Golang"})
	require.NoError(t, err)
	project := &entity.Project{Title: "Shop", Tags: []entity.Tag{*tag}}
	require.NoError(t, db.Create(project).Error)

	require.NoError(t, svc.DeleteTag(ctx, tag.ID))

	var links int64
	require.NoError(t, db.Table("project_tags").Where("tag_id = ?", tag.ID).Count(&links).Error)
	assert.Zero(t, links)

	var projects int64
	require.NoError(t, db.Model(&entity.Project{}).Count(&projects).Error)
	assert.Equal(t, int64(1), projects)

	assert.Equal(t, 404, apperror.MapErrorToStatus(svc.DeleteTag(ctx, tag.ID)))
	assert.Equal(t, 404, apperror.MapErrorToStatus(svc.DeleteTag(ctx, uuid.New())))
}
