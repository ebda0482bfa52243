package handler

import (
	"net/http"

	"anoa.com/devsearch/internal/modules/admin/dto"
	adminService "anoa.com/devsearch/internal/modules/admin/service"
	commonDto "anoa.com/devsearch/pkg/dto"
	"anoa.com/devsearch/pkg/request"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	var filter dto.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	res, err := h.adminService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) DeleteProfile(c *gin.Context) {
	id, err := request.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.adminService.DeleteProfile(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "profile deleted successfully"})
}

func (h *AdminHandler) Reindex(c *gin.Context) {
	res, err := h.adminService.Reindex(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, res)
}
