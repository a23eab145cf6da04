package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const guestSessionKeyPrefix = "guest:session:"

// RedisGuestSessionStore keeps guest sessions in Redis so every instance
// behind the load balancer sees the same sessions
type RedisGuestSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuestSessionStore creates a store backed by an existing client
func NewRedisGuestSessionStore(client *redis.Client, ttl time.Duration) *RedisGuestSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisGuestSessionStore{client: client, ttl: ttl}
}

// Issue creates a new session and returns its ID
func (s *RedisGuestSessionStore) Issue(ctx context.Context) (string, error) {
	sessionID := uuid.New().String()

	ok, err := s.client.SetNX(ctx, guestSessionKeyPrefix+sessionID, "1", s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to issue guest session: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("guest session collision for %s", sessionID)
	}
	return sessionID, nil
}

// Validate checks the session and slides its expiry forward
func (s *RedisGuestSessionStore) Validate(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	ok, err := s.client.Expire(ctx, guestSessionKeyPrefix+sessionID, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to validate guest session: %w", err)
	}
	return ok, nil
}

// Revoke deletes a session
func (s *RedisGuestSessionStore) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, guestSessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to revoke guest session: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is owned by the caller
func (s *RedisGuestSessionStore) Close() error {
	return nil
}

var _ GuestSessionStore = (*RedisGuestSessionStore)(nil)
