package service

import (
	"context"
	"fmt"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/modules/admin/dto"
	profile "anoa.com/devsearch/internal/modules/profile/service"
	searchDto "anoa.com/devsearch/internal/modules/search/dto"
	search "anoa.com/devsearch/internal/modules/search/service"
	userRepo "anoa.com/devsearch/internal/modules/user/repository"
	"anoa.com/devsearch/pkg/apperror"
	"anoa.com/devsearch/pkg/pagination"
	"github.com/google/uuid"
)

const UsersPerPage = 20

type AdminService interface {
	ListUsers(ctx context.Context, filter dto.UserFilter) (*dto.UserListResponse, error)
	DeleteProfile(ctx context.Context, profileID uuid.UUID) error
	Reindex(ctx context.Context) (*searchDto.ReindexResult, error)
}

type adminService struct {
	userRepo       userRepo.UserRepository
	profileService profile.ProfileService
	searchService  search.SearchService
	source         search.Source
}

// NewAdminService accepts a nil searchService when no search backend is configured.
func NewAdminService(userRepo userRepo.UserRepository, profileService profile.ProfileService, searchService search.SearchService, source search.Source) AdminService {
	return &adminService{
		userRepo:       userRepo,
		profileService: profileService,
		searchService:  searchService,
		source:         source,
	}
}

func (s *adminService) ListUsers(ctx context.Context, filter dto.UserFilter) (*dto.UserListResponse, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	page := pagination.Resolve(filter.Page, total, UsersPerPage)

	users, _, err := s.userRepo.FindAll(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*entity.User{}
	}

	return &dto.UserListResponse{Data: users, Meta: page.Meta()}, nil
}

func (s *adminService) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	return s.profileService.DeleteProfile(ctx, profileID)
}

func (s *adminService) Reindex(ctx context.Context) (*searchDto.ReindexResult, error) {
	if s.searchService == nil {
		return nil, fmt.Errorf("search is not configured: %w", apperror.ErrUnavailable)
	}
	return s.searchService.Reindex(ctx, s.source)
}
