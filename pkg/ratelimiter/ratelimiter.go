// Package ratelimiter keeps per-caller cooldowns and daily quotas in redis.
// A nil client disables every limit.
package ratelimiter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"anoa.com/devsearch/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ScopeProject = "project"
	ScopeMessage = "message"
)

type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// RetryAfterSeconds rounds up so clients never retry early.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func cooldownKey(userID uuid.UUID, scope string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), scope)
}

// CheckAndSetRateLimit reports whether the caller may act now and, if so,
// starts a cooldown of length limit.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, scope string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, cooldownKey(userID, scope), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, userID uuid.UUID, scope string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, cooldownKey(userID, scope)).Result()
}

// ClearRateLimit drops a cooldown, used to roll back when the guarded action fails.
func ClearRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, scope string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, cooldownKey(userID, scope)).Err()
}

// Cooldown is CheckAndSetRateLimit folded into a single error.
func Cooldown(ctx context.Context, rdb *redis.Client, userID uuid.UUID, scope string, limit time.Duration) error {
	allowed, err := CheckAndSetRateLimit(ctx, rdb, userID, scope, limit)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}
	ttl, _ := GetRateLimitTTL(ctx, rdb, userID, scope)
	return &RateLimitError{
		Message:    fmt.Sprintf("please wait %.0f seconds before trying again", ttl.Seconds()),
		RetryAfter: ttl,
	}
}

// DailyQuota admits at most max actions per identity per calendar day (UTC).
// The identity is never stored: it is hashed with a salt that rotates daily.
func DailyQuota(ctx context.Context, rdb *redis.Client, scope, identity string, max int, now time.Time) error {
	if rdb == nil || max <= 0 {
		return nil
	}

	today := now.UTC().Format("2006-01-02")
	saltKey := fmt.Sprintf("%s:salt:%s", scope, today)

	salt, err := rdb.Get(ctx, saltKey).Result()
	if errors.Is(err, redis.Nil) {
		// another request may have won the race, so read back whatever is stored
		if err := rdb.SetNX(ctx, saltKey, uuid.NewString(), 25*time.Hour).Err(); err != nil {
			return fmt.Errorf("failed to save salt: %w", err)
		}
		salt, err = rdb.Get(ctx, saltKey).Result()
	}
	if err != nil {
		return fmt.Errorf("failed to get salt: %w", err)
	}

	sum := sha256.Sum256([]byte(identity + salt))
	quotaKey := fmt.Sprintf("%s_quota:%s", scope, hex.EncodeToString(sum[:]))

	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, quotaKey)
	pipe.Expire(ctx, quotaKey, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update quota: %w", err)
	}

	if incr.Val() > int64(max) {
		return &RateLimitError{
			Message:    fmt.Sprintf("daily limit reached (max %d per day)", max),
			RetryAfter: nextMidnight(now).Sub(now),
		}
	}
	return nil
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// GetDurationFromEnv reads a duration such as "30s"; a bare integer is seconds.
func GetDurationFromEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
