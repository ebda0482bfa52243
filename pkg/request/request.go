package request

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/devsearch/pkg/apperror"
	"anoa.com/devsearch/pkg/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadBytes caps a single uploaded file.
const MaxUploadBytes = 10 << 20

// ParamUUID parses a path parameter, treating a malformed id as not found.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", name, apperror.ErrNotFound)
	}
	return id, nil
}

// OptionalFile opens the multipart file under field if the client sent one.
// The returned close func is always safe to call.
func OptionalFile(c *gin.Context, field string) (*dto.UploadFile, func(), error) {
	noop := func() {}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("read %s: %w", field, apperror.ErrBadRequest)
	}
	if fileHeader.Size > MaxUploadBytes {
		return nil, noop, apperror.New(http.StatusRequestEntityTooLarge, fmt.Sprintf("%s must be at most 10MB", field), apperror.ErrBadRequest)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", field, apperror.ErrBadRequest)
	}

	return &dto.UploadFile{Reader: file, FileName: fileHeader.Filename}, func() { _ = file.Close() }, nil
}
