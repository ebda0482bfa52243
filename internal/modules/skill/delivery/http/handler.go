package handler

import (
	"net/http"

	"anoa.com/devsearch/internal/modules/skill/dto"
	skill "anoa.com/devsearch/internal/modules/skill/service"
	"anoa.com/devsearch/pkg/request"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
)

type SkillHandler struct {
	service skill.SkillService
}

func NewSkillHandler(service skill.SkillService) *SkillHandler {
	return &SkillHandler{service: service}
}

func (h *SkillHandler) CreateSkill(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.SkillInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, "invalid skill", err)
		return
	}

	res, err := h.service.AddSkill(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusCreated, skill.MsgAdded, skill.RedirectAccount, res)
}

func (h *SkillHandler) UpdateSkill(c *gin.Context) {
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

	var input dto.SkillInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, "invalid skill", err)
		return
	}

	res, err := h.service.UpdateSkill(c.Request.Context(), userID, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusOK, skill.MsgUpdated, skill.RedirectAccount, res)
}

func (h *SkillHandler) DeleteSkill(c *gin.Context) {
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

	if err := h.service.DeleteSkill(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusOK, skill.MsgDeleted, skill.RedirectAccount, nil)
}
