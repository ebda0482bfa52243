package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/modules/profile/dto"
	"anoa.com/devsearch/internal/modules/profile/repository"
	projectRepo "anoa.com/devsearch/internal/modules/project/repository"
	search "anoa.com/devsearch/internal/modules/search/service"
	userRepo "anoa.com/devsearch/internal/modules/user/repository"
	"anoa.com/devsearch/pkg/apperror"
	commonDto "anoa.com/devsearch/pkg/dto"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/pagination"
	"anoa.com/devsearch/pkg/sanitizer"
	"anoa.com/devsearch/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgAccountUpdated = "Account was updated successfully!"
	MsgAccountDeleted = "Account was deleted successfully!"
	RedirectAccount   = "/account"
	RedirectHome      = "/"
	profileFolderName = "profiles"
)

type ProfileService interface {
	ListProfiles(ctx context.Context, filter commonDto.ListFilter) (*dto.ProfileListResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*dto.ProfileDetailResponse, error)
	GetAccount(ctx context.Context, userID uuid.UUID) (*dto.AccountResponse, error)
	UpdateAccount(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, image *commonDto.UploadFile) (*entity.Profile, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	// DeleteProfile removes any profile and, through the sync callbacks, its user.
	DeleteProfile(ctx context.Context, profileID uuid.UUID) error
}

type profileService struct {
	repo         repository.ProfileRepository
	userRepo     userRepo.UserRepository
	projectRepo  projectRepo.ProjectRepository
	imageStorage storage.ImageStorage
	indexer      search.Indexer
	uploadFolder string
}

func NewProfileService(
	repo repository.ProfileRepository,
	userRepo userRepo.UserRepository,
	projectRepo projectRepo.ProjectRepository,
	imageStorage storage.ImageStorage,
	indexer search.Indexer,
	uploadFolder string,
) ProfileService {
	if indexer == nil {
		indexer = search.NoopIndexer{}
	}
	return &profileService{
		repo:         repo,
		userRepo:     userRepo,
		projectRepo:  projectRepo,
		imageStorage: imageStorage,
		indexer:      indexer,
		uploadFolder: uploadFolder,
	}
}

func (s *profileService) ListProfiles(ctx context.Context, filter commonDto.ListFilter) (*dto.ProfileListResponse, error) {
	total, err := s.repo.Count(ctx, filter.SearchQuery)
	if err != nil {
		return nil, err
	}
	page := pagination.Resolve(filter.Page, total, pagination.ProfilesPerPage)

	profiles, _, err := s.repo.Search(ctx, filter.SearchQuery, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []*entity.Profile{}
	}

	return &dto.ProfileListResponse{
		Data:        profiles,
		Meta:        page.Meta(),
		SearchQuery: filter.SearchQuery,
	}, nil
}

func (s *profileService) GetProfile(ctx context.Context, id uuid.UUID) (*dto.ProfileDetailResponse, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	projects, err := s.projectRepo.FindByOwner(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	top, other := SplitSkills(profile.Skills)
	return &dto.ProfileDetailResponse{
		Profile:     profile,
		TopSkills:   top,
		OtherSkills: other,
		Projects:    nonNil(projects),
	}, nil
}

// SplitSkills separates described skills from bare ones, keeping order.
func SplitSkills(skills []entity.Skill) (top, other []entity.Skill) {
	top, other = []entity.Skill{}, []entity.Skill{}
	for _, sk := range skills {
		if sk.IsTop() {
			top = append(top, sk)
		} else {
			other = append(other, sk)
		}
	}
	return top, other
}

func (s *profileService) GetAccount(ctx context.Context, userID uuid.UUID) (*dto.AccountResponse, error) {
	profile, err := s.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.FindByOwner(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	skills := profile.Skills
	if skills == nil {
		skills = []entity.Skill{}
	}
	return &dto.AccountResponse{Profile: profile, Skills: skills, Projects: nonNil(projects)}, nil
}

func (s *profileService) UpdateAccount(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, image *commonDto.UploadFile) (*entity.Profile, error) {
	profile, err := s.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.TrimSpace(input.Email)

	if username != profile.Username {
		taken, err := s.userRepo.UsernameTaken(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.NewFieldError("invalid profile", "username", "A user with that username already exists.")
		}
	}
	if !strings.EqualFold(email, profile.Email) {
		taken, err := s.userRepo.EmailTaken(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.NewFieldError("invalid profile", "email", "A user with that email already exists.")
		}
	}

	var oldImage *string
	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		oldImage = profile.ProfileImage
		profile.ProfileImage = &url
	}

	profile.Name = strings.TrimSpace(input.Name)
	profile.Email = email
	profile.Username = username
	profile.Location = strings.TrimSpace(input.Location)
	profile.ShortIntro = sanitizer.Text(input.ShortIntro)
	profile.Bio = sanitizer.Text(input.Bio)
	profile.SocialGithub = input.SocialGithub
	profile.SocialTwitter = input.SocialTwitter
	profile.SocialLinkedin = input.SocialLinkedin
	profile.SocialYoutube = input.SocialYoutube
	profile.SocialWebsite = input.SocialWebsite

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	if oldImage != nil {
		s.deleteImage(ctx, *oldImage)
	}

	s.indexer.IndexProfile(ctx, profile)
	return profile, nil
}

func (s *profileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.currentProfile(ctx, userID)
	if err != nil {
		return err
	}
	return s.delete(ctx, profile)
}

func (s *profileService) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("profile: %w", apperror.ErrNotFound)
		}
		return err
	}
	return s.delete(ctx, profile)
}

func (s *profileService) delete(ctx context.Context, profile *entity.Profile) error {
	// projects outlive their owner; their index documents carry the owner's name
	projects, err := s.projectRepo.FindByOwner(ctx, profile.ID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, profile); err != nil {
		return err
	}

	if profile.ProfileImage != nil {
		s.deleteImage(ctx, *profile.ProfileImage)
	}
	s.indexer.DeleteProfile(ctx, profile.ID)
	for _, p := range projects {
		p.OwnerID = nil
		p.Owner = nil
		s.indexer.IndexProject(ctx, p)
	}

	logger.Log.WithField("profile_id", profile.ID).Info("profile and user deleted")
	return nil
}

func (s *profileService) currentProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) uploadImage(ctx context.Context, image *commonDto.UploadFile) (string, error) {
	if s.imageStorage == nil {
		return "", fmt.Errorf("image uploads are not configured: %w", apperror.ErrBadRequest)
	}
	if !storage.IsImage(image.FileName) {
		return "", fmt.Errorf("profile image must be an image file: %w", apperror.ErrBadRequest)
	}
	folder := profileFolderName
	if s.uploadFolder != "" {
		folder = s.uploadFolder + "/" + profileFolderName
	}
	return s.imageStorage.UploadImage(ctx, image.Reader, folder, image.FileName)
}

func (s *profileService) deleteImage(ctx context.Context, url string) {
	if s.imageStorage == nil {
		return
	}
	if err := s.imageStorage.DeleteImage(ctx, url); err != nil {
		logger.Log.WithError(err).WithField("url", url).Warn("failed to delete profile image")
	}
}

func nonNil(projects []*entity.Project) []*entity.Project {
	if projects == nil {
		return []*entity.Project{}
	}
	return projects
}
