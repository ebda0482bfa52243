package repository

import (
	"context"

	"anoa.com/devsearch/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	Exists(ctx context.Context, ownerID, projectID uuid.UUID) (bool, error)
	// Tally returns the number of reviews and how many of them are up votes.
	Tally(ctx context.Context, projectID uuid.UUID) (total, up int64, err error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Omit("Owner").Create(review).Error
}

func (r *reviewRepository) Exists(ctx context.Context, ownerID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("owner_id = ? AND project_id = ?", ownerID, projectID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) Tally(ctx context.Context, projectID uuid.UUID) (int64, int64, error) {
	var row struct {
		Total int64
		Up    int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN value = ? THEN 1 ELSE 0 END), 0) AS up", entity.VoteUp).
		Where("project_id = ?", projectID).
		Scan(&row).Error
	return row.Total, row.Up, err
}
