package handler

import (
	"net/http"

	"anoa.com/devsearch/internal/modules/tag/dto"
	tag "anoa.com/devsearch/internal/modules/tag/service"
	commonDto "anoa.com/devsearch/pkg/dto"
	"anoa.com/devsearch/pkg/request"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	service tag.TagService
}

func NewTagHandler(service tag.TagService) *TagHandler {
	return &TagHandler{service: service}
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var input dto.CreateTagInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, "invalid tag", err)
		return
	}

	res, err := h.service.CreateTag(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *TagHandler) GetTags(c *gin.Context) {
	var filter dto.TagFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	res, err := h.service.ListTags(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteTag(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "tag deleted"})
}
