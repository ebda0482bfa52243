package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"anoa.com/devsearch/internal/entity"
	attachmentRepo "anoa.com/devsearch/internal/modules/attachment/repository"
	profileRepo "anoa.com/devsearch/internal/modules/profile/repository"
	"anoa.com/devsearch/internal/modules/project/dto"
	"anoa.com/devsearch/internal/modules/project/repository"
	"anoa.com/devsearch/internal/modules/project/service"
	tagRepo "anoa.com/devsearch/internal/modules/tag/repository"
	"anoa.com/devsearch/internal/testutil"
	"anoa.com/devsearch/pkg/apperror"
	commonDto "anoa.com/devsearch/pkg/dto"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     service.ProjectService
	storage *testutil.Storage
	indexer *testutil.Indexer
}

func newFixture(t *testing.T, opts service.Options) *fixture {
	t.Helper()
	db := testutil.NewDB(t, nil)
	f := &fixture{db: db, storage: &testutil.Storage{}, indexer: testutil.NewIndexer()}
	opts.ImageStorage = f.storage
	opts.Indexer = f.indexer
	f.svc = service.NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewReviewRepository(db),
		profileRepo.NewProfileRepository(db),
		tagRepo.NewTagRepository(db),
		attachmentRepo.NewAttachmentRepository(db),
		opts,
	)
	return f
}

func TestVoteCount(t *testing.T) {
	total, ratio := service.VoteCount(0, 0)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, ratio)

	total, ratio = service.VoteCount(3, 2)
	assert.Equal(t, 3, total)
	assert.Equal(t, 66, ratio)

	total, ratio = service.VoteCount(4, 4)
	assert.Equal(t, 4, total)
	assert.Equal(t, 100, ratio)
}

func TestSplitTagNames(t *testing.T) {
	assert.Equal(t, []string{"go", "rust", "web"}, service.SplitTagNames("go, rust  web"))
	assert.Empty(t, service.SplitTagNames(" , "))
}

func TestCreateProjectResolvesTagsAndIndexes(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()
	user, _ := testutil.CreateUser(t, f.db, "alice")

	existing := &entity.Tag{Name: "django"}
	require.NoError(t, f.db.Create(existing).Error)

	project, err := f.svc.CreateProject(ctx, user.ID, dto.ProjectInput{
		Title:       "  Shop  ",
		Description: "<b>fast</b><script>alert(1)</script>",
		Tags:        []string{existing.ID.String()},
		NewTags:     "django, react",
	}, &commonDto.UploadFile{Reader: strings.NewReader("png"), FileName: "shot.png"})
	require.NoError(t, err)

	assert.Equal(t, "Shop", project.Title)
	assert.NotContains(t, project.Description, "script")
	require.NotNil(t, project.FeaturedImage)
	assert.Contains(t, *project.FeaturedImage, "projects")

	names := make([]string, 0, len(project.Tags))
	for _, tag := range project.Tags {
		names = append(names, tag.Name)
	}
	assert.ElementsMatch(t, []string{"django", "react"}, names)
	assert.Equal(t, "Shop", f.indexer.Projects[project.ID.String()])
}

func TestCreateProjectRejectsUnknownTag(t *testing.T) {
	f := newFixture(t, service.Options{})
	user, _ := testutil.CreateUser(t, f.db, "alice")

	_, err := f.svc.CreateProject(context.Background(), user.ID, dto.ProjectInput{
		Title: "Shop",
		Tags:  []string{uuid.NewString()},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, 400, apperror.MapErrorToStatus(err))
}

func TestCreateProjectRejectsNonImage(t *testing.T) {
	f := newFixture(t, service.Options{})
	user, _ := testutil.CreateUser(t, f.db, "alice")

	_, err := f.svc.CreateProject(context.Background(), user.ID, dto.ProjectInput{Title: "Shop"},
		&commonDto.UploadFile{Reader: strings.NewReader("x"), FileName: "notes.txt"})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.MapErrorToStatus(err))
	assert.Empty(t, f.storage.Uploaded())
}

func TestCreateProjectCooldown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixture(t, service.Options{RedisClient: rdb, CreateRateLimit: time.Minute})
	user, _ := testutil.CreateUser(t, f.db, "alice")
	ctx := context.Background()

	// a failed create does not start the cooldown
	_, err := f.svc.CreateProject(ctx, user.ID, dto.ProjectInput{Title: "Bad", Tags: []string{uuid.NewString()}}, nil)
	require.Error(t, err)

	_, err = f.svc.CreateProject(ctx, user.ID, dto.ProjectInput{Title: "First"}, nil)
	require.NoError(t, err)

	_, err = f.svc.CreateProject(ctx, user.ID, dto.ProjectInput{Title: "Second"}, nil)
	require.Error(t, err)
	assert.Equal(t, 429, apperror.MapErrorToStatus(err))

	mr.FastForward(time.Minute + time.Second)
	_, err = f.svc.CreateProject(ctx, user.ID, dto.ProjectInput{Title: "Third"}, nil)
	require.NoError(t, err)
}

func TestCreateProjectClaimsOwnAttachments(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()
	user, profile := testutil.CreateUser(t, f.db, "alice")
	_, other := testutil.CreateUser(t, f.db, "bob")

	mine := &entity.Attachment{OwnerID: profile.ID, FileURL: "https://files.example.com/a.pdf", FileType: "pdf"}
	theirs := &entity.Attachment{OwnerID: other.ID, FileURL: "https://files.example.com/b.pdf", FileType: "pdf"}
	require.NoError(t, f.db.Omit("Owner").Create(mine).Error)
	require.NoError(t, f.db.Omit("Owner").Create(theirs).Error)

	project, err := f.svc.CreateProject(ctx, user.ID, dto.ProjectInput{
		Title:         "Shop",
		AttachmentIDs: []uint{mine.ID, theirs.ID},
	}, nil)
	require.NoError(t, err)

	var reloaded entity.Attachment
	require.NoError(t, f.db.First(&reloaded, mine.ID).Error)
	require.NotNil(t, reloaded.ProjectID)
	assert.Equal(t, project.ID, *reloaded.ProjectID)

	var untouched entity.Attachment
	require.NoError(t, f.db.First(&untouched, theirs.ID).Error)
	assert.Nil(t, untouched.ProjectID)
}

func TestListProjectsPaginatesAndSearches(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()
	user, _ := testutil.CreateUser(t, f.db, "alice")

	for i := 0; i < 7; i++ {
		_, err := f.svc.CreateProject(ctx, user.ID, dto.ProjectInput{Title: fmt.Sprintf("Project %d", i)}, nil)
		require.NoError(t, err)
	}
	_, err := f.svc.CreateProject(ctx, user.ID, dto.ProjectInput{Title: "Tagged", NewTags: "golang"}, nil)
	require.NoError(t, err)

	first, err := f.svc.ListProjects(ctx, commonDto.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, first.Data, 6)
	assert.Equal(t, 2, first.Meta.TotalPages)
	assert.Equal(t, int64(8), first.Meta.TotalItems)

	second, err := f.svc.ListProjects(ctx, commonDto.ListFilter{Page: "2"})
	require.NoError(t, err)
	assert.Len(t, second.Data, 2)

	byTag, err := f.svc.ListProjects(ctx, commonDto.ListFilter{SearchQuery: "GoLang"})
	require.NoError(t, err)
	require.Len(t, byTag.Data, 1)
	assert.Equal(t, "Tagged", byTag.Data[0].Title)
	assert.Equal(t, "GoLang", byTag.SearchQuery)

	byOwner, err := f.svc.ListProjects(ctx, commonDto.ListFilter{SearchQuery: "name alice"})
	require.NoError(t, err)
	assert.Len(t, byOwner.Data, 6)
	assert.Equal(t, int64(8), byOwner.Meta.TotalItems)
}

func TestUpdateAndDeleteAreOwnerScoped(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()
	alice, _ := testutil.CreateUser(t, f.db, "alice")
	bob, _ := testutil.CreateUser(t, f.db, "bob")

	project, err := f.svc.CreateProject(ctx, alice.ID, dto.ProjectInput{Title: "Shop"},
		&commonDto.UploadFile{Reader: strings.NewReader("a"), FileName: "a.png"})
	require.NoError(t, err)
	oldImage := *project.FeaturedImage

	_, err = f.svc.UpdateProject(ctx, bob.ID, project.ID, dto.ProjectInput{Title: "Stolen"}, nil)
	assert.Equal(t, 404, apperror.MapErrorToStatus(err))
	assert.Equal(t, 404, apperror.MapErrorToStatus(f.svc.DeleteProject(ctx, bob.ID, project.ID)))

	updated, err := f.svc.UpdateProject(ctx, alice.ID, project.ID, dto.ProjectInput{Title: "Shop v2"},
		&commonDto.UploadFile{Reader: strings.NewReader("b"), FileName: "b.png"})
	require.NoError(t, err)
	assert.Equal(t, "Shop v2", updated.Title)
	assert.NotEqual(t, oldImage, *updated.FeaturedImage)
	assert.Equal(t, []string{oldImage}, f.storage.Deleted())

	require.NoError(t, f.svc.DeleteProject(ctx, alice.ID, project.ID))
	_, err = f.svc.GetProject(ctx, project.ID)
	assert.Equal(t, 404, apperror.MapErrorToStatus(err))
	assert.Contains(t, f.indexer.DeletedProjects, project.ID.String())
	assert.Contains(t, f.storage.Deleted(), *updated.FeaturedImage)
}

func TestAddReview(t *testing.T) {
	f := newFixture(t, service.Options{})
	ctx := context.Background()
	alice, _ := testutil.CreateUser(t, f.db, "alice")
	bob, _ := testutil.CreateUser(t, f.db, "bob")
	carol, _ := testutil.CreateUser(t, f.db, "carol")

	project, err := f.svc.CreateProject(ctx, alice.ID, dto.ProjectInput{Title: "Shop"}, nil)
	require.NoError(t, err)

	_, err = f.svc.AddReview(ctx, alice.ID, project.ID, dto.ReviewInput{Value: entity.VoteUp})
	assert.Equal(t, 400, apperror.MapErrorToStatus(err))

	reviewed, err := f.svc.AddReview(ctx, bob.ID, project.ID, dto.ReviewInput{Value: entity.VoteUp, Body: "nice"})
	require.NoError(t, err)
	assert.Equal(t, 1, reviewed.VoteTotal)
	assert.Equal(t, 100, reviewed.VoteRatio)

	_, err = f.svc.AddReview(ctx, bob.ID, project.ID, dto.ReviewInput{Value: entity.VoteDown})
	assert.Equal(t, 409, apperror.MapErrorToStatus(err))

	reviewed, err = f.svc.AddReview(ctx, carol.ID, project.ID, dto.ReviewInput{Value: entity.VoteDown})
	require.NoError(t, err)
	assert.Equal(t, 2, reviewed.VoteTotal)
	assert.Equal(t, 50, reviewed.VoteRatio)

	_, err = f.svc.AddReview(ctx, carol.ID, uuid.New(), dto.ReviewInput{Value: entity.VoteUp})
	assert.Equal(t, 404, apperror.MapErrorToStatus(err))
}

type failingProjects struct {
	repository.ProjectRepository
	err error
}

func (f failingProjects) Create(context.Context, *entity.Project) error { return f.err }

type failingAttachments struct {
	attachmentRepo.AttachmentRepository
	err error
}

func (f failingAttachments) AttachToProject(context.Context, []uint, uuid.UUID, uuid.UUID) error {
	return f.err
}

func TestCreateProjectDiscardsImageOnFailure(t *testing.T) {
	ctx := context.Background()
	image := func() *commonDto.UploadFile {
		return &commonDto.UploadFile{Reader: strings.NewReader("png"), FileName: "shot.png"}
	}

	t.Run("insert fails", func(t *testing.T) {
		db := testutil.NewDB(t, nil)
		storage := &testutil.Storage{}
		svc := service.NewProjectService(
			failingProjects{ProjectRepository: repository.NewProjectRepository(db), err: errors.New("insert failed")},
			repository.NewReviewRepository(db),
			profileRepo.NewProfileRepository(db),
			tagRepo.NewTagRepository(db),
			attachmentRepo.NewAttachmentRepository(db),
			service.Options{ImageStorage: storage},
		)
		user, _ := testutil.CreateUser(t, db, "alice")

		_, err := svc.CreateProject(ctx, user.ID, dto.ProjectInput{Title: "Shop"}, image())
		require.Error(t, err)
		require.Len(t, storage.Uploaded(), 1)
		assert.Equal(t, storage.Uploaded(), storage.Deleted())
	})

	t.Run("attach fails", func(t *testing.T) {
		db := testutil.NewDB(t, nil)
		storage := &testutil.Storage{}
		svc := service.NewProjectService(
			repository.NewProjectRepository(db),
			repository.NewReviewRepository(db),
			profileRepo.NewProfileRepository(db),
			tagRepo.NewTagRepository(db),
			failingAttachments{AttachmentRepository: attachmentRepo.NewAttachmentRepository(db), err: errors.New("attach failed")},
			service.Options{ImageStorage: storage},
		)
		user, _ := testutil.CreateUser(t, db, "alice")

		_, err := svc.CreateProject(ctx, user.ID, dto.ProjectInput{Title: "Shop", NewTags: "go"}, image())
		require.Error(t, err)
		require.Len(t, storage.Uploaded(), 1)
		assert.Equal(t, storage.Uploaded(), storage.Deleted())

		var projects int64
		require.NoError(t, db.Model(&entity.Project{}).Count(&projects).Error)
		assert.Zero(t, projects)
	})
}
