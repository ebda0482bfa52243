package service

import (
	"context"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/modules/stat/dto"
	"anoa.com/devsearch/internal/modules/stat/repository"
)

const (
	DefaultTopLimit = 5
	MaxTopLimit     = 50
)

type StatService interface {
	GetStats(ctx context.Context, limit int) (*dto.StatsResponse, error)
}

type statService struct {
	repo repository.StatRepository
}

func NewStatService(repo repository.StatRepository) StatService {
	return &statService{
		repo: repo,
	}
}

func (s *statService) GetStats(ctx context.Context, limit int) (*dto.StatsResponse, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}

	developers, err := s.repo.CountProfiles(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.CountProjects(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopProjects(ctx, limit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []*entity.Project{}
	}

	return &dto.StatsResponse{
		TotalDevelopers: developers,
		TotalProjects:   projects,
		TopProjects:     top,
	}, nil
}
