package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"agritrace-backend/internal/database/redis"
)

const sessionTTL = 24 * time.Hour

// SessionService stores active bearer sessions in Redis. A token is
// valid only while its hash is present; logout and expiry both remove
// it, which is what forces the client-side sign-out on stale tokens.
type SessionService struct {
	redisClient *redis.Client
}

func NewSessionService(redisClient *redis.Client) *SessionService {
	return &SessionService{redisClient: redisClient}
}

func sessionKey(userID, tokenHash string) string {
	return fmt.Sprintf("session:%s:%s", userID, tokenHash)
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *SessionService) CreateSession(ctx context.Context, userID, token string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	key := sessionKey(userID, HashToken(token))
	if err := s.redisClient.GetClient().Set(ctx, key, time.Now().Unix(), sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// ValidateSession reports whether the token still has a live session.
func (s *SessionService) ValidateSession(ctx context.Context, userID, token string) (bool, error) {
	key := sessionKey(userID, HashToken(token))
	err := s.redisClient.GetClient().Get(ctx, key).Err()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return true, nil
}

func (s *SessionService) InvalidateSession(ctx context.Context, userID, token string) error {
	key := sessionKey(userID, HashToken(token))
	if err := s.redisClient.GetClient().Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// InvalidateUserSessions removes all sessions for a user (logout all devices)
func (s *SessionService) InvalidateUserSessions(ctx context.Context, userID string) error {
	client := s.redisClient.GetClient()

	iter := client.Scan(ctx, 0, fmt.Sprintf("session:%s:*", userID), 0).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan sessions: %w", err)
	}
	return nil
}
