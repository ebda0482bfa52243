package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/devsearch/internal/entity"
	profileRepo "anoa.com/devsearch/internal/modules/profile/repository"
	search "anoa.com/devsearch/internal/modules/search/service"
	"anoa.com/devsearch/internal/modules/skill/dto"
	"anoa.com/devsearch/internal/modules/skill/repository"
	"anoa.com/devsearch/pkg/apperror"
	"anoa.com/devsearch/pkg/sanitizer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgAdded        = "Skill was added successfully!"
	MsgUpdated      = "Skill was updated successfully!"
	MsgDeleted      = "Skill was deleted successfully!"
	RedirectAccount = "/account"
)

type SkillService interface {
	AddSkill(ctx context.Context, userID uuid.UUID, input dto.SkillInput) (*entity.Skill, error)
	UpdateSkill(ctx context.Context, userID, skillID uuid.UUID, input dto.SkillInput) (*entity.Skill, error)
	DeleteSkill(ctx context.Context, userID, skillID uuid.UUID) error
}

type skillService struct {
	repo        repository.SkillRepository
	profileRepo profileRepo.ProfileRepository
	indexer     search.Indexer
}

func NewSkillService(repo repository.SkillRepository, profileRepo profileRepo.ProfileRepository, indexer search.Indexer) SkillService {
	if indexer == nil {
		indexer = search.NoopIndexer{}
	}
	return &skillService{repo: repo, profileRepo: profileRepo, indexer: indexer}
}

func (s *skillService) AddSkill(ctx context.Context, userID uuid.UUID, input dto.SkillInput) (*entity.Skill, error) {
	profile, err := s.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	skill := &entity.Skill{
		OwnerID:     profile.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: sanitizer.Text(input.Description),
	}
	if err := s.repo.Create(ctx, skill); err != nil {
		return nil, err
	}

	s.reindexOwner(ctx, userID)
	return skill, nil
}

func (s *skillService) UpdateSkill(ctx context.Context, userID, skillID uuid.UUID, input dto.SkillInput) (*entity.Skill, error) {
	skill, err := s.findOwned(ctx, userID, skillID)
	if err != nil {
		return nil, err
	}

	skill.Name = strings.TrimSpace(input.Name)
	skill.Description = sanitizer.Text(input.Description)
	if err := s.repo.Update(ctx, skill); err != nil {
		return nil, err
	}

	s.reindexOwner(ctx, userID)
	return skill, nil
}

func (s *skillService) DeleteSkill(ctx context.Context, userID, skillID uuid.UUID) error {
	skill, err := s.findOwned(ctx, userID, skillID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, skill); err != nil {
		return err
	}

	s.reindexOwner(ctx, userID)
	return nil
}

func (s *skillService) currentProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	return profile, nil
}

// findOwned reports a skill that exists but belongs to someone else as not found.
func (s *skillService) findOwned(ctx context.Context, userID, skillID uuid.UUID) (*entity.Skill, error) {
	profile, err := s.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	skill, err := s.repo.FindOwned(ctx, skillID, profile.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("skill: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return skill, nil
}

// reindexOwner refreshes the profile document so skill searches stay current.
func (s *skillService) reindexOwner(ctx context.Context, userID uuid.UUID) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return
	}
	s.indexer.IndexProfile(ctx, profile)
}
