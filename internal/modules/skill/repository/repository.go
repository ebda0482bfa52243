package repository

import (
	"context"

	"anoa.com/devsearch/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SkillRepository interface {
	Create(ctx context.Context, skill *entity.Skill) error
	// FindOwned returns the skill only if ownerID owns it.
	FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*entity.Skill, error)
	Update(ctx context.Context, skill *entity.Skill) error
	Delete(ctx context.Context, skill *entity.Skill) error
}

type skillRepository struct {
	db *gorm.DB
}

func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) Create(ctx context.Context, skill *entity.Skill) error {
	return r.db.WithContext(ctx).Create(skill).Error
}

func (r *skillRepository) FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*entity.Skill, error) {
	var skill entity.Skill
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepository) Update(ctx context.Context, skill *entity.Skill) error {
	return r.db.WithContext(ctx).Save(skill).Error
}

func (r *skillRepository) Delete(ctx context.Context, skill *entity.Skill) error {
	return r.db.WithContext(ctx).Delete(skill).Error
}
