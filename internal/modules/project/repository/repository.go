package repository

import (
	"context"
	"strings"

	"anoa.com/devsearch/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	// FindOwned returns the project only if ownerID owns it.
	FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*entity.Project, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Project, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*entity.Project, int64, error)
	Count(ctx context.Context, query string) (int64, error)
	FindAll(ctx context.Context) ([]*entity.Project, error)
	Top(ctx context.Context, limit int) ([]*entity.Project, error)
	Update(ctx context.Context, project *entity.Project, tags []entity.Tag) error
	UpdateVotes(ctx context.Context, id uuid.UUID, total, ratio int) error
	Delete(ctx context.Context, project *entity.Project) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Omit("Owner", "Reviews", "Attachments").Create(project).Error
}

func (r *projectRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") })
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	var project entity.Project
	if err := r.preloaded(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("reviews.created_at DESC") }).
		Preload("Reviews.Owner").
		Preload("Attachments").
		Where("id = ?", id).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*entity.Project, error) {
	var project entity.Project
	if err := r.preloaded(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Project, error) {
	var projects []*entity.Project
	err := r.preloaded(ctx).
		Where("owner_id = ?", ownerID).
		Order(entity.ProjectOrder).
		Find(&projects).Error
	return projects, err
}

// matching filters on title, description, owner name and tag names, ignoring case.
func (r *projectRepository) matching(query string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		query = strings.TrimSpace(query)
		if query == "" {
			return db
		}
		like := "%" + strings.ToLower(query) + "%"

		owners := r.db.Model(&entity.Profile{}).Select("id").Where("LOWER(name) LIKE ?", like)
		tagged := r.db.Table("project_tags").
			Select("project_tags.project_id").
			Joins("JOIN tags ON tags.id = project_tags.tag_id").
			Where("LOWER(tags.name) LIKE ?", like)

		return db.Where(
			"(LOWER(projects.title) LIKE ? OR LOWER(projects.description) LIKE ? OR projects.owner_id IN (?) OR projects.id IN (?))",
			like, like, owners, tagged,
		)
	}
}

func (r *projectRepository) Count(ctx context.Context, query string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Project{}).Scopes(r.matching(query)).Count(&total).Error
	return total, err
}

func (r *projectRepository) Search(ctx context.Context, query string, offset, limit int) ([]*entity.Project, int64, error) {
	total, err := r.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	var projects []*entity.Project
	if err := r.preloaded(ctx).
		Scopes(r.matching(query)).
		Order(entity.ProjectOrder).
		Offset(offset).
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *projectRepository) FindAll(ctx context.Context) ([]*entity.Project, error) {
	var projects []*entity.Project
	err := r.preloaded(ctx).Order(entity.ProjectOrder).Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Top(ctx context.Context, limit int) ([]*entity.Project, error) {
	var projects []*entity.Project
	err := r.preloaded(ctx).Order(entity.ProjectOrder).Limit(limit).Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Update(ctx context.Context, project *entity.Project, tags []entity.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(project).Error; err != nil {
			return err
		}
		if tags == nil {
			tags = []entity.Tag{}
		}
		if err := tx.Model(project).Association("Tags").Replace(tags); err != nil {
			return err
		}
		project.Tags = tags
		return nil
	})
}

func (r *projectRepository) UpdateVotes(ctx context.Context, id uuid.UUID, total, ratio int) error {
	return r.db.WithContext(ctx).Model(&entity.Project{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"vote_total": total, "vote_ratio": ratio}).Error
}

func (r *projectRepository) Delete(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Select("Tags").Delete(project).Error
}
