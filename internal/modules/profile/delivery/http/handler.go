package handler

import (
	"net/http"

	"anoa.com/devsearch/internal/modules/profile/dto"
	profile "anoa.com/devsearch/internal/modules/profile/service"
	commonDto "anoa.com/devsearch/pkg/dto"
	"anoa.com/devsearch/pkg/request"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	service profile.ProfileService
}

func NewProfileHandler(service profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) GetProfiles(c *gin.Context) {
	var filter commonDto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	res, err := h.service.ListProfiles(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) GetAccount(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetAccount(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) UpdateAccount(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateProfileInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, "invalid profile", err)
		return
	}

	image, closeImage, err := request.OptionalFile(c, "profile_image")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeImage()

	res, err := h.service.UpdateAccount(c.Request.Context(), userID, input, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusOK, profile.MsgAccountUpdated, profile.RedirectAccount, res)
}

func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusOK, profile.MsgAccountDeleted, profile.RedirectHome, nil)
}

// DeleteProfile is the admin variant of DeleteAccount.
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteProfile(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "profile deleted"})
}
