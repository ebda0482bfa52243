package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/modules/attachment/dto"
	"anoa.com/devsearch/internal/modules/attachment/repository"
	profileRepo "anoa.com/devsearch/internal/modules/profile/repository"
	"anoa.com/devsearch/pkg/apperror"
	commonDto "anoa.com/devsearch/pkg/dto"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrphanAge is how long an upload may stay unattached before cleanup.
const OrphanAge = 24 * time.Hour

const attachmentFolderName = "attachments"

type AttachmentService interface {
	UploadAttachment(ctx context.Context, userID uuid.UUID, file *commonDto.UploadFile) (*dto.UploadAttachmentResponse, error)
	CleanupOrphanAttachments(ctx context.Context) (*dto.CleanupResult, error)
}

type attachmentService struct {
	repo         repository.AttachmentRepository
	profileRepo  profileRepo.ProfileRepository
	fileStorage  storage.ImageStorage
	uploadFolder string
	now          func() time.Time
}

func NewAttachmentService(repo repository.AttachmentRepository, profileRepo profileRepo.ProfileRepository, fileStorage storage.ImageStorage, uploadFolder string) AttachmentService {
	return &attachmentService{
		repo:         repo,
		profileRepo:  profileRepo,
		fileStorage:  fileStorage,
		uploadFolder: uploadFolder,
		now:          time.Now,
	}
}

func (s *attachmentService) UploadAttachment(ctx context.Context, userID uuid.UUID, file *commonDto.UploadFile) (*dto.UploadAttachmentResponse, error) {
	if file == nil {
		return nil, apperror.NewFieldError("invalid upload", "file", "This field is required.")
	}
	if s.fileStorage == nil {
		return nil, fmt.Errorf("file uploads are not configured: %w", apperror.ErrBadRequest)
	}

	owner, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	folder := attachmentFolderName
	if s.uploadFolder != "" {
		folder = s.uploadFolder + "/" + attachmentFolderName
	}

	url, err := s.fileStorage.UploadImage(ctx, file.Reader, folder, file.FileName)
	if err != nil {
		return nil, err
	}

	attachment := &entity.Attachment{
		OwnerID:  owner.ID,
		FileURL:  url,
		FileType: FileType(file.FileName),
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		return nil, err
	}

	return &dto.UploadAttachmentResponse{
		ID:       attachment.ID,
		FileURL:  attachment.FileURL,
		FileType: attachment.FileType,
	}, nil
}

// FileType guesses a MIME type from the file extension.
func FileType(fileName string) string {
	if t := mime.TypeByExtension(filepath.Ext(fileName)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CleanupOrphanAttachments removes uploads never attached to a project. A
// row whose stored file cannot be deleted is kept for the next run.
func (s *attachmentService) CleanupOrphanAttachments(ctx context.Context) (*dto.CleanupResult, error) {
	orphans, err := s.repo.FindOrphans(ctx, s.now().Add(-OrphanAge))
	if err != nil {
		return nil, err
	}

	res := &dto.CleanupResult{}
	for _, orphan := range orphans {
		if s.fileStorage != nil {
			if err := s.fileStorage.DeleteImage(ctx, orphan.FileURL); err != nil {
				logger.Log.WithError(err).WithField("attachment_id", orphan.ID).Warn("failed to delete orphan file")
				res.Failed++
				continue
			}
		}
		if err := s.repo.Delete(ctx, orphan.ID); err != nil {
			logger.Log.WithError(err).WithField("attachment_id", orphan.ID).Warn("failed to delete orphan attachment")
			res.Failed++
			continue
		}
		res.Deleted++
	}

	if len(orphans) > 0 {
		logger.Log.WithFields(map[string]any{"deleted": res.Deleted, "failed": res.Failed}).Info("orphan attachments cleaned up")
	}
	return res, nil
}
