package cache

import (
	"context"
	"fmt"
	"time"
)

// revokedSessionPrefix is the Redis key prefix for revoked session tokens.
const revokedSessionPrefix = "session:revoked:"

// RevokeSession marks a session token id as revoked until the token
// would have expired anyway. Sign-out is the only writer.
func (c *Cache) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; nothing to revoke.
		return nil
	}

	key := revokedSessionPrefix + tokenID
	if err := c.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsSessionRevoked reports whether a session token id has been revoked.
func (c *Cache) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	key := revokedSessionPrefix + tokenID

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check session revocation: %w", err)
	}
	return n > 0, nil
}
