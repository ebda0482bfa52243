package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/devsearch/internal/entity"
	attachmentRepo "anoa.com/devsearch/internal/modules/attachment/repository"
	profileRepo "anoa.com/devsearch/internal/modules/profile/repository"
	"anoa.com/devsearch/internal/modules/project/dto"
	"anoa.com/devsearch/internal/modules/project/repository"
	search "anoa.com/devsearch/internal/modules/search/service"
	tagRepo "anoa.com/devsearch/internal/modules/tag/repository"
	"anoa.com/devsearch/pkg/apperror"
	commonDto "anoa.com/devsearch/pkg/dto"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/pagination"
	"anoa.com/devsearch/pkg/ratelimiter"
	"anoa.com/devsearch/pkg/sanitizer"
	"anoa.com/devsearch/pkg/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	MsgCreated        = "Project was created successfully!"
	MsgUpdated        = "Project was updated successfully!"
	MsgDeleted        = "Project was deleted successfully!"
	MsgReviewed       = "Your review was successfully submitted!"
	RedirectAccount   = "/account"
	projectFolderName = "projects"
)

type ProjectService interface {
	ListProjects(ctx context.Context, filter commonDto.ListFilter) (*dto.ProjectListResponse, error)
	GetProject(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	CreateProject(ctx context.Context, userID uuid.UUID, input dto.ProjectInput, image *commonDto.UploadFile) (*entity.Project, error)
	UpdateProject(ctx context.Context, userID, projectID uuid.UUID, input dto.ProjectInput, image *commonDto.UploadFile) (*entity.Project, error)
	DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error
	AddReview(ctx context.Context, userID, projectID uuid.UUID, input dto.ReviewInput) (*entity.Project, error)
}

type Options struct {
	RedisClient     *redis.Client
	ImageStorage    storage.ImageStorage
	Indexer         search.Indexer
	UploadFolder    string
	CreateRateLimit time.Duration
}

type projectService struct {
	repo           repository.ProjectRepository
	reviewRepo     repository.ReviewRepository
	profileRepo    profileRepo.ProfileRepository
	tagRepo        tagRepo.TagRepository
	attachmentRepo attachmentRepo.AttachmentRepository
	opts           Options
}

func NewProjectService(
	repo repository.ProjectRepository,
	reviewRepo repository.ReviewRepository,
	profileRepo profileRepo.ProfileRepository,
	tagRepo tagRepo.TagRepository,
	attachmentRepo attachmentRepo.AttachmentRepository,
	opts Options,
) ProjectService {
	if opts.Indexer == nil {
		opts.Indexer = search.NoopIndexer{}
	}
	return &projectService{
		repo:           repo,
		reviewRepo:     reviewRepo,
		profileRepo:    profileRepo,
		tagRepo:        tagRepo,
		attachmentRepo: attachmentRepo,
		opts:           opts,
	}
}

func (s *projectService) ListProjects(ctx context.Context, filter commonDto.ListFilter) (*dto.ProjectListResponse, error) {
	total, err := s.repo.Count(ctx, filter.SearchQuery)
	if err != nil {
		return nil, err
	}
	page := pagination.Resolve(filter.Page, total, pagination.ProjectsPerPage)

	projects, _, err := s.repo.Search(ctx, filter.SearchQuery, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*entity.Project{}
	}

	return &dto.ProjectListResponse{
		Data:        projects,
		Meta:        page.Meta(),
		SearchQuery: filter.SearchQuery,
	}, nil
}

func (s *projectService) GetProject(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return project, nil
}

func (s *projectService) currentProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	return profile, nil
}

func (s *projectService) CreateProject(ctx context.Context, userID uuid.UUID, input dto.ProjectInput, image *commonDto.UploadFile) (*entity.Project, error) {
	profile, err := s.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := ratelimiter.Cooldown(ctx, s.opts.RedisClient, userID, ratelimiter.ScopeProject, s.opts.CreateRateLimit); err != nil {
		return nil, err
	}

	project, err := s.createProject(ctx, profile, input, image)
	if err != nil {
		_ = ratelimiter.ClearRateLimit(ctx, s.opts.RedisClient, userID, ratelimiter.ScopeProject)
		return nil, err
	}
	return project, nil
}

func (s *projectService) createProject(ctx context.Context, owner *entity.Profile, input dto.ProjectInput, image *commonDto.UploadFile) (*entity.Project, error) {
	tags, err := s.resolveTags(ctx, input)
	if err != nil {
		return nil, err
	}

	project := &entity.Project{
		OwnerID:     &owner.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: sanitizer.Text(input.Description),
		DemoLink:    input.DemoLink,
		SourceLink:  input.SourceLink,
		Tags:        tags,
	}

	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		project.FeaturedImage = &url
	}

	if err := s.repo.Create(ctx, project); err != nil {
		s.discardImage(ctx, project.FeaturedImage)
		return nil, err
	}

	if err := s.attachmentRepo.AttachToProject(ctx, input.AttachmentIDs, project.ID, owner.ID); err != nil {
		if delErr := s.repo.Delete(ctx, project); delErr != nil {
			logger.Log.WithError(delErr).WithField("project_id", project.ID).Error("failed to remove project after attach error")
			return nil, err
		}
		s.discardImage(ctx, project.FeaturedImage)
		return nil, err
	}

	return s.reloadAndIndex(ctx, project.ID)
}

func (s *projectService) UpdateProject(ctx context.Context, userID, projectID uuid.UUID, input dto.ProjectInput, image *commonDto.UploadFile) (*entity.Project, error) {
	profile, err := s.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	project, err := s.findOwned(ctx, projectID, profile.ID)
	if err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, input)
	if err != nil {
		return nil, err
	}

	project.Title = strings.TrimSpace(input.Title)
	project.Description = sanitizer.Text(input.Description)
	project.DemoLink = input.DemoLink
	project.SourceLink = input.SourceLink

	var oldImage, newImage *string
	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		oldImage, newImage = project.FeaturedImage, &url
		project.FeaturedImage = newImage
	}

	if err := s.repo.Update(ctx, project, tags); err != nil {
		s.discardImage(ctx, newImage)
		return nil, err
	}
	s.discardImage(ctx, oldImage)

	if err := s.attachmentRepo.AttachToProject(ctx, input.AttachmentIDs, project.ID, profile.ID); err != nil {
		return nil, err
	}

	return s.reloadAndIndex(ctx, project.ID)
}

func (s *projectService) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	profile, err := s.currentProfile(ctx, userID)
	if err != nil {
		return err
	}

	project, err := s.findOwned(ctx, projectID, profile.ID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, project); err != nil {
		return err
	}

	if project.FeaturedImage != nil {
		s.deleteImage(ctx, *project.FeaturedImage)
	}
	s.opts.Indexer.DeleteProject(ctx, project.ID)
	return nil
}

func (s *projectService) AddReview(ctx context.Context, userID, projectID uuid.UUID, input dto.ReviewInput) (*entity.Project, error) {
	profile, err := s.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.OwnerID != nil && *project.OwnerID == profile.ID {
		return nil, apperror.New(http.StatusBadRequest, "You cannot review your own work", apperror.ErrBadRequest)
	}

	exists, err := s.reviewRepo.Exists(ctx, profile.ID, project.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.New(http.StatusConflict, "You have already submitted your review for this project", apperror.ErrConflict)
	}

	review := &entity.Review{
		OwnerID:   profile.ID,
		ProjectID: project.ID,
		Value:     input.Value,
		Body:      sanitizer.Text(input.Body),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.recountVotes(ctx, project.ID); err != nil {
		return nil, err
	}

	return s.reloadAndIndex(ctx, project.ID)
}

// recountVotes sets vote_total to the number of reviews and vote_ratio to
// the integer percentage of up votes.
func (s *projectService) recountVotes(ctx context.Context, projectID uuid.UUID) error {
	total, up, err := s.reviewRepo.Tally(ctx, projectID)
	if err != nil {
		return err
	}
	total32, ratio := VoteCount(total, up)
	return s.repo.UpdateVotes(ctx, projectID, total32, ratio)
}

// VoteCount returns the review total and the integer up-vote percentage.
func VoteCount(total, up int64) (int, int) {
	if total == 0 {
		return 0, 0
	}
	return int(total), int(up * 100 / total)
}

func (s *projectService) findOwned(ctx context.Context, projectID, ownerID uuid.UUID) (*entity.Project, error) {
	project, err := s.repo.FindOwned(ctx, projectID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return project, nil
}

// resolveTags combines the selected tag ids with free-text new tags, which
// are split on commas and whitespace and created on demand.
func (s *projectService) resolveTags(ctx context.Context, input dto.ProjectInput) ([]entity.Tag, error) {
	ids := make([]uuid.UUID, 0, len(input.Tags))
	for _, raw := range input.Tags {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid tag id %q: %w", raw, apperror.ErrBadRequest)
		}
		ids = append(ids, id)
	}

	tags, err := s.tagRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(tags))
	for _, t := range tags {
		seen[t.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return nil, fmt.Errorf("tag %s: %w", id, apperror.ErrBadRequest)
		}
	}

	for _, name := range SplitTagNames(input.NewTags) {
		tag, err := s.tagRepo.FirstOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			tags = append(tags, *tag)
		}
	}
	return tags, nil
}

// SplitTagNames turns "go, rust  web" into [go rust web].
func SplitTagNames(raw string) []string {
	return strings.Fields(strings.ReplaceAll(raw, ",", " "))
}

func (s *projectService) uploadImage(ctx context.Context, image *commonDto.UploadFile) (string, error) {
	if s.opts.ImageStorage == nil {
		return "", fmt.Errorf("image uploads are not configured: %w", apperror.ErrBadRequest)
	}
	if !storage.IsImage(image.FileName) {
		return "", fmt.Errorf("featured image must be an image file: %w", apperror.ErrBadRequest)
	}
	return s.opts.ImageStorage.UploadImage(ctx, image.Reader, s.folder(), image.FileName)
}

func (s *projectService) deleteImage(ctx context.Context, url string) {
	if s.opts.ImageStorage == nil {
		return
	}
	if err := s.opts.ImageStorage.DeleteImage(ctx, url); err != nil {
		logger.Log.WithError(err).WithField("url", url).Warn("failed to delete project image")
	}
}

// discardImage removes an upload that no saved project refers to.
func (s *projectService) discardImage(ctx context.Context, url *string) {
	if url != nil {
		s.deleteImage(ctx, *url)
	}
}

func (s *projectService) folder() string {
	if s.opts.UploadFolder == "" {
		return projectFolderName
	}
	return s.opts.UploadFolder + "/" + projectFolderName
}

func (s *projectService) reloadAndIndex(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	s.opts.Indexer.IndexProject(ctx, project)
	return project, nil
}
