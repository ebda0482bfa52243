package handler

import (
	"net/http"

	"anoa.com/devsearch/internal/modules/user/dto"
	"anoa.com/devsearch/internal/modules/user/service"
	"anoa.com/devsearch/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, service.MsgRegisterFailed, err)
		return
	}

	res, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// Login expects OptionalAuth in front of it so signed-in callers can be sent away.
func (h *AuthHandler) Login(c *gin.Context) {
	if response.OptionalUserID(c) != nil {
		response.Redirect(c, http.StatusOK, "", service.RedirectProfiles, nil)
		return
	}

	var input dto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, "username and password are required", err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), input, c.Query("next"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, _ := c.Get("claims")
	registered, _ := claims.(*jwt.RegisteredClaims)

	if err := h.service.Logout(c.Request.Context(), registered); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Redirect(c, http.StatusOK, service.MsgLoggedOut, service.RedirectAfterLogout, nil)
}
