package dto

import (
	"anoa.com/devsearch/internal/entity"
)

type RegisterInput struct {
	FirstName string `json:"first_name" form:"first_name" binding:"required,max=150"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	Username  string `json:"username" form:"username" binding:"required,username"`
	Password1 string `json:"password1" form:"password1" binding:"required,min=8"`
	Password2 string `json:"password2" form:"password2" binding:"required,eqfield=Password1"`
}

type LoginInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type AuthResponse struct {
	Message     string          `json:"message"`
	Redirect    string          `json:"redirect"`
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	User        *entity.User    `json:"user"`
	Profile     *entity.Profile `json:"profile"`
}
