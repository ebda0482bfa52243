package repository

import (
	"context"
	"errors"

	"anoa.com/devsearch/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagRepository interface {
	Create(ctx context.Context, tag *entity.Tag) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Tag, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Tag, error)
	FindAll(ctx context.Context, filter string) ([]*entity.Tag, error)
	// FirstOrCreate returns the tag with this exact name, creating it when missing.
	FirstOrCreate(ctx context.Context, name string) (*entity.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *entity.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Tag, error) {
	var tag entity.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []entity.Tag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) FindAll(ctx context.Context, filter string) ([]*entity.Tag, error) {
	var tags []*entity.Tag
	query := r.db.WithContext(ctx)

	if filter != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter+"%")
	}

	if err := query.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) FirstOrCreate(ctx context.Context, name string) (*entity.Tag, error) {
	var tag entity.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = entity.Tag{Name: name}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM project_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Tag{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
