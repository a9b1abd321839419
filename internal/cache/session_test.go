package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mailvend/mailvend/internal/testutil"
)

// setupCache connects to the test Redis instance and flushes it.
// Tests are skipped unless TEST_REDIS_URL is set.
func setupCache(t *testing.T) (*Cache, context.Context) {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")
	ctx := context.Background()

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("failed to flush Redis: %v", err)
	}

	return c, ctx
}

func TestCache_RevokeSession(t *testing.T) {
	c, ctx := setupCache(t)

	revoked, err := c.IsSessionRevoked(ctx, "token-1")
	if err != nil {
		t.Fatalf("IsSessionRevoked failed: %v", err)
	}
	if revoked {
		t.Error("fresh token should not be revoked")
	}

	if err := c.RevokeSession(ctx, "token-1", time.Minute); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}

	revoked, err = c.IsSessionRevoked(ctx, "token-1")
	if err != nil {
		t.Fatalf("IsSessionRevoked failed: %v", err)
	}
	if !revoked {
		t.Error("token should be revoked")
	}
}

func TestCache_RevokeSession_ExpiredTTLIsNoop(t *testing.T) {
	c, ctx := setupCache(t)

	if err := c.RevokeSession(ctx, "token-2", -time.Minute); err != nil {
		t.Fatalf("RevokeSession with negative TTL failed: %v", err)
	}

	revoked, err := c.IsSessionRevoked(ctx, "token-2")
	if err != nil {
		t.Fatalf("IsSessionRevoked failed: %v", err)
	}
	if revoked {
		t.Error("expired token needs no revocation entry")
	}
}

func TestCache_RevokeSession_IsolatedPerToken(t *testing.T) {
	c, ctx := setupCache(t)

	if err := c.RevokeSession(ctx, "token-3", time.Minute); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}

	revoked, err := c.IsSessionRevoked(ctx, "token-4")
	if err != nil {
		t.Fatalf("IsSessionRevoked failed: %v", err)
	}
	if revoked {
		t.Error("revoking one token should not revoke another")
	}
}
