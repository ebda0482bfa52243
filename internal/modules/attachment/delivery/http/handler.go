package handler

import (
	"net/http"

	attachment "anoa.com/devsearch/internal/modules/attachment/service"
	"anoa.com/devsearch/pkg/request"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	service attachment.AttachmentService
}

func NewAttachmentHandler(service attachment.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, closeFile, err := request.OptionalFile(c, "file")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeFile()

	res, err := h.service.UploadAttachment(c.Request.Context(), userID, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}
