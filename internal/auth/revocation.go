package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records sessions whose tokens must no longer be accepted.
type RevocationStore interface {
	MarkRevoked(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// RedisRevocationStore stores revoked-session flags with TTL.
type RedisRevocationStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisRevocationStore creates a revocation store on client.
func NewRedisRevocationStore(client redis.Cmdable, prefix string) *RedisRevocationStore {
	if prefix == "" {
		prefix = "auth:revoked:"
	}
	return &RedisRevocationStore{client: client, prefix: prefix}
}

// MarkRevoked flags sessionID until the token would have expired anyway.
func (s *RedisRevocationStore) MarkRevoked(ctx context.Context, sessionID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Hour
	}
	return s.client.Set(ctx, s.prefix+sessionID, "1", ttl).Err()
}

// IsRevoked reports whether sessionID has been flagged.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
