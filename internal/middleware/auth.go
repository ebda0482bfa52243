package middleware

import (
	"net/http"
	"strings"

	"anoa.com/devsearch/internal/entity"
	userRepo "anoa.com/devsearch/internal/modules/user/repository"
	"anoa.com/devsearch/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	tokens   *token.Manager
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	// Fallback to query parameter "token" (useful for WebSockets)
	return c.Query("token")
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*jwt.RegisteredClaims, bool) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil, false
	}
	claims, err := m.tokens.Parse(c.Request.Context(), tokenString)
	if err != nil {
		return nil, false
	}
	c.Set("user_id", claims.Subject)
	c.Set("claims", claims)
	return claims, true
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}
		if _, ok := m.authenticate(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		id, err := uuid.Parse(userID.(string))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		if user.Role.Name != entity.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
