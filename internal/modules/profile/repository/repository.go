package repository

import (
	"context"
	"strings"

	"anoa.com/devsearch/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*entity.Profile, int64, error)
	Count(ctx context.Context, query string) (int64, error)
	FindAll(ctx context.Context) ([]*entity.Profile, error)
	// Update saves the profile row. The sync callbacks mirror it onto the user.
	Update(ctx context.Context, profile *entity.Profile) error
	// Delete removes the profile. The sync callbacks delete the user with it.
	Delete(ctx context.Context, profile *entity.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func orderedSkills(db *gorm.DB) *gorm.DB {
	return db.Order("skills.created_at ASC")
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).
		Preload("Skills", orderedSkills).
		Where("id = ?", id).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).
		Preload("Skills", orderedSkills).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// matching filters on name, short intro and skill names, ignoring case.
func (r *profileRepository) matching(query string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		query = strings.TrimSpace(query)
		if query == "" {
			return db
		}
		like := "%" + strings.ToLower(query) + "%"
		skilled := r.db.Model(&entity.Skill{}).Select("owner_id").Where("LOWER(name) LIKE ?", like)

		return db.Where(
			"(LOWER(profiles.name) LIKE ? OR LOWER(profiles.short_intro) LIKE ? OR profiles.id IN (?))",
			like, like, skilled,
		)
	}
}

func (r *profileRepository) Count(ctx context.Context, query string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Profile{}).Scopes(r.matching(query)).Count(&total).Error
	return total, err
}

func (r *profileRepository) Search(ctx context.Context, query string, offset, limit int) ([]*entity.Profile, int64, error) {
	total, err := r.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	var profiles []*entity.Profile
	if err := r.db.WithContext(ctx).
		Preload("Skills", orderedSkills).
		Scopes(r.matching(query)).
		Order("profiles.created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *profileRepository) FindAll(ctx context.Context) ([]*entity.Profile, error) {
	var profiles []*entity.Profile
	err := r.db.WithContext(ctx).Preload("Skills", orderedSkills).Order("created_at ASC").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error
}

func (r *profileRepository) Delete(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Delete(profile).Error
}
