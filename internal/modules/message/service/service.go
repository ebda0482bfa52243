package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/modules/message/dto"
	"anoa.com/devsearch/internal/modules/message/repository"
	profileRepo "anoa.com/devsearch/internal/modules/profile/repository"
	"anoa.com/devsearch/pkg/apperror"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/ratelimiter"
	"anoa.com/devsearch/pkg/sanitizer"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const MsgSent = "Your message was successfully sent!"

// InboxChannel is the redis pub/sub channel carrying new messages for a profile.
func InboxChannel(profileID uuid.UUID) string {
	return "inbox:" + profileID.String()
}

// RedirectProfile is where the contact form sends the sender back to.
func RedirectProfile(profileID uuid.UUID) string {
	return "/profiles/" + profileID.String()
}

type MessageService interface {
	Inbox(ctx context.Context, userID uuid.UUID) (*dto.InboxResponse, error)
	ViewMessage(ctx context.Context, userID, messageID uuid.UUID) (*entity.Message, error)
	// SendMessage stores a message for recipientID. A nil senderUserID means an
	// anonymous sender identified only by clientIP for quota purposes.
	SendMessage(ctx context.Context, senderUserID *uuid.UUID, recipientID uuid.UUID, input dto.SendMessageInput, clientIP string) (*entity.Message, error)
	// RecipientProfileID resolves the profile whose inbox a user reads.
	RecipientProfileID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type messageService struct {
	repo        repository.MessageRepository
	profileRepo profileRepo.ProfileRepository
	redisClient *redis.Client
	anonQuota   int
	now         func() time.Time
}

func NewMessageService(repo repository.MessageRepository, profileRepo profileRepo.ProfileRepository, redisClient *redis.Client, anonQuota int) MessageService {
	return &messageService{
		repo:        repo,
		profileRepo: profileRepo,
		redisClient: redisClient,
		anonQuota:   anonQuota,
		now:         time.Now,
	}
}

func (s *messageService) Inbox(ctx context.Context, userID uuid.UUID) (*dto.InboxResponse, error) {
	profileID, err := s.RecipientProfileID(ctx, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.FindByRecipient(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*entity.Message{}
	}

	unread, err := s.repo.CountUnread(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &dto.InboxResponse{Messages: messages, UnreadCount: unread}, nil
}

func (s *messageService) ViewMessage(ctx context.Context, userID, messageID uuid.UUID) (*entity.Message, error) {
	profileID, err := s.RecipientProfileID(ctx, userID)
	if err != nil {
		return nil, err
	}

	message, err := s.repo.FindForRecipient(ctx, messageID, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("message: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !message.IsRead {
		if err := s.repo.MarkAsRead(ctx, message.ID); err != nil {
			return nil, err
		}
		message.IsRead = true
	}
	return message, nil
}

func (s *messageService) SendMessage(ctx context.Context, senderUserID *uuid.UUID, recipientID uuid.UUID, input dto.SendMessageInput, clientIP string) (*entity.Message, error) {
	recipient, err := s.profileRepo.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipient: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	message := &entity.Message{
		RecipientID: recipient.ID,
		Subject:     strings.TrimSpace(input.Subject),
		Body:        sanitizer.Text(input.Body),
	}
	if message.Body == "" {
		return nil, apperror.NewFieldError("invalid message", "body", "This field is required.")
	}

	if senderUserID != nil {
		sender, err := s.profileRepo.FindByUserID(ctx, *senderUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.ErrUnauthorized
			}
			return nil, err
		}
		message.SenderID = &sender.ID
		message.Name = sender.Name
		message.Email = sender.Email
	} else {
		message.Name = strings.TrimSpace(input.Name)
		message.Email = strings.TrimSpace(input.Email)
		if message.Name == "" {
			return nil, apperror.NewFieldError("invalid message", "name", "This field is required.")
		}
		if message.Email == "" {
			return nil, apperror.NewFieldError("invalid message", "email", "This field is required.")
		}
		if err := ratelimiter.DailyQuota(ctx, s.redisClient, ratelimiter.ScopeMessage, clientIP, s.anonQuota, s.now()); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.publish(ctx, message)
	return message, nil
}

func (s *messageService) RecipientProfileID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperror.ErrUnauthorized
		}
		return uuid.Nil, err
	}
	return profile.ID, nil
}

func (s *messageService) publish(ctx context.Context, message *entity.Message) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(message)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to encode message for inbox stream")
		return
	}
	if err := s.redisClient.Publish(ctx, InboxChannel(message.RecipientID), payload).Err(); err != nil {
		logger.Log.WithError(err).WithField("message_id", message.ID).Warn("failed to publish inbox message")
	}
}
