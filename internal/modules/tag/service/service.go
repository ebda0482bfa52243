package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/modules/tag/dto"
	"anoa.com/devsearch/internal/modules/tag/repository"
	"anoa.com/devsearch/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagService interface {
	CreateTag(ctx context.Context, input dto.CreateTagInput) (*entity.Tag, error)
	ListTags(ctx context.Context, filter dto.TagFilter) ([]*entity.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
}

type tagService struct {
	repo repository.TagRepository
}

func NewTagService(repo repository.TagRepository) TagService {
	return &tagService{repo: repo}
}

func (s *tagService) CreateTag(ctx context.Context, input dto.CreateTagInput) (*entity.Tag, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("invalid tag", "name", "This field is required.")
	}

	existing, err := s.repo.FindAll(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.Name == name {
			return nil, fmt.Errorf("tag %q already exists: %w", name, apperror.ErrConflict)
		}
	}

	tag := &entity.Tag{Name: name}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) ListTags(ctx context.Context, filter dto.TagFilter) ([]*entity.Tag, error) {
	tags, err := s.repo.FindAll(ctx, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*entity.Tag{}
	}
	return tags, nil
}

func (s *tagService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tag: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}
