package handler

import (
	"fmt"
	"net/http"

	"anoa.com/devsearch/internal/modules/project/dto"
	project "anoa.com/devsearch/internal/modules/project/service"
	commonDto "anoa.com/devsearch/pkg/dto"
	"anoa.com/devsearch/pkg/request"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	service project.ProjectService
}

func NewProjectHandler(service project.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) GetProjects(c *gin.Context) {
	var filter commonDto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	res, err := h.service.ListProjects(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetProject(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.ProjectInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, "invalid project", err)
		return
	}

	image, closeImage, err := request.OptionalFile(c, "featured_image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeImage()

	res, err := h.service.CreateProject(c.Request.Context(), userID, input, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusCreated, project.MsgCreated, project.RedirectAccount, res)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.ProjectInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, "invalid project", err)
		return
	}

	image, closeImage, err := request.OptionalFile(c, "featured_image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeImage()

	res, err := h.service.UpdateProject(c.Request.Context(), userID, id, input, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusOK, project.MsgUpdated, project.RedirectAccount, res)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteProject(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusOK, project.MsgDeleted, project.RedirectAccount, nil)
}

func (h *ProjectHandler) AddReview(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.ReviewInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, "invalid review", err)
		return
	}

	res, err := h.service.AddReview(c.Request.Context(), userID, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusCreated, project.MsgReviewed, fmt.Sprintf("/projects/%s", id), res)
}
