// Package token issues and verifies HS256 access tokens. Revoked token ids
// are kept in redis until the token would have expired anyway.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/devsearch/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "auth:revoked:"

type Manager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewManager returns a Manager. rdb may be nil, in which case Revoke is a no-op.
func NewManager(secret string, ttl time.Duration, rdb *redis.Client) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, rdb: rdb, now: time.Now}
}

// Issue signs a token whose subject is userID and returns it with its expiry.
func (m *Manager) Issue(userID uuid.UUID) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates signature and expiry and rejects revoked tokens.
func (m *Manager) Parse(ctx context.Context, tokenString string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, apperror.ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, apperror.ErrUnauthorized
	}

	revoked, err := m.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperror.ErrUnauthorized
	}
	return claims, nil
}

// Revoke puts the token id on the deny list for the rest of its lifetime.
func (m *Manager) Revoke(ctx context.Context, claims *jwt.RegisteredClaims) error {
	if m.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}

	ttl := m.ttl
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(m.now())
	}
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, revokedPrefix+claims.ID, "1", ttl).Err()
}

func (m *Manager) IsRevoked(ctx context.Context, id string) (bool, error) {
	if m.rdb == nil || id == "" {
		return false, nil
	}
	_, err := m.rdb.Get(ctx, revokedPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return true, nil
}
