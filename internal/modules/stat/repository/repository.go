package repository

import (
	"context"

	"anoa.com/devsearch/internal/entity"
	"gorm.io/gorm"
)

type StatRepository interface {
	CountProfiles(ctx context.Context) (int64, error)
	CountProjects(ctx context.Context) (int64, error)
	TopProjects(ctx context.Context, limit int) ([]*entity.Project, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Profile{}).Count(&count).Error
	return count, err
}

func (r *statRepository) CountProjects(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Project{}).Count(&count).Error
	return count, err
}

func (r *statRepository) TopProjects(ctx context.Context, limit int) ([]*entity.Project, error) {
	var projects []*entity.Project
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Tags").
		Order(entity.ProjectOrder).
		Limit(limit).
		Find(&projects).Error
	return projects, err
}
