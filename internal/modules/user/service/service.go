package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/modules/user/dto"
	"anoa.com/devsearch/internal/modules/user/repository"
	"anoa.com/devsearch/pkg/apperror"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/token"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MsgRegistered       = "User account was created"
	MsgRegisterFailed   = "An error has occurred during registration!"
	MsgUnknownUsername  = "Username does not exist!"
	MsgWrongPassword    = "Password is incorrect!"
	MsgLoggedIn         = "You successfully logged in"
	MsgLoggedOut        = "User was logged out!"
	RedirectAfterSignup = "/account/edit"
	RedirectAfterLogin  = "/account"
	RedirectAfterLogout = "/login"
	RedirectProfiles    = "/profiles"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput, next string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, claims *jwt.RegisteredClaims) error
}

type authService struct {
	repo   repository.UserRepository
	tokens *token.Manager
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager) AuthService {
	return &authService{repo: repo, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.TrimSpace(input.Email)

	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.NewFieldError(MsgRegisterFailed, "username", "A user with that username already exists.")
	}
	taken, err = s.repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.NewFieldError(MsgRegisterFailed, "email", "A user with that email already exists.")
	}

	role, err := s.repo.FindRoleByName(ctx, entity.RoleDeveloper)
	if err != nil {
		return nil, fmt.Errorf("default role: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		Role:         *role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusBadRequest, MsgRegisterFailed, err)
		}
		logger.Log.WithError(err).WithField("username", username).Error("registration failed")
		return nil, apperror.New(http.StatusInternalServerError, MsgRegisterFailed, err)
	}

	return s.buildAuthResponse(user, MsgRegistered, RedirectAfterSignup)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput, next string) (*dto.AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusUnauthorized, MsgUnknownUsername, apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(http.StatusUnauthorized, MsgWrongPassword, apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user, MsgLoggedIn, SafeNext(next, RedirectAfterLogin))
}

func (s *authService) Logout(ctx context.Context, claims *jwt.RegisteredClaims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *authService) buildAuthResponse(user *entity.User, message, redirect string) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		Message:     message,
		Redirect:    redirect,
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		User:        user,
		Profile:     user.Profile,
	}, nil
}

// SafeNext accepts only same-site absolute paths.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
