package repository

import (
	"context"

	"anoa.com/devsearch/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*entity.Message, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	// FindForRecipient returns the message only if recipientID received it.
	FindForRecipient(ctx context.Context, id, recipientID uuid.UUID) (*entity.Message, error)
	// MarkAsRead flips is_read from false to true. It never clears the flag.
	MarkAsRead(ctx context.Context, id uuid.UUID) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Omit("Sender", "Recipient").Create(message).Error
}

func (r *messageRepository) FindByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order(entity.MessageOrder).
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *messageRepository) FindForRecipient(ctx context.Context, id, recipientID uuid.UUID) (*entity.Message, error) {
	var message entity.Message
	if err := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true).Error
}
