package repository

import (
	"context"
	"time"

	"anoa.com/devsearch/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	// AttachToProject links uploads owned by ownerID that are free or already on this project.
	AttachToProject(ctx context.Context, attachmentIDs []uint, projectID, ownerID uuid.UUID) error
	FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.Attachment, error)
	Delete(ctx context.Context, id uint) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	return r.db.WithContext(ctx).Omit("Owner").Create(attachment).Error
}

func (r *attachmentRepository) AttachToProject(ctx context.Context, attachmentIDs []uint, projectID, ownerID uuid.UUID) error {
	if len(attachmentIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.Attachment{}).
		Where("id IN ? AND owner_id = ?", attachmentIDs, ownerID).
		Where("(project_id IS NULL OR project_id = ?)", projectID).
		Update("project_id", projectID).Error
}

func (r *attachmentRepository) FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.Attachment, error) {
	var attachments []entity.Attachment
	err := r.db.WithContext(ctx).
		Where("project_id IS NULL AND created_at < ?", cutoffTime).
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Attachment{}, id).Error
}
