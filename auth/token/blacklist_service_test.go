package token

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lepista-tech/mycelium/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestBlacklist(t *testing.T) (*BlacklistService, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return NewBlacklistService(c, zap.NewNop()), cleanup
}

func TestBlacklistService_RevokeThenIsRevoked(t *testing.T) {
	svc, cleanup := setupTestBlacklist(t)
	defer cleanup()

	ctx := context.Background()
	jti := "11111111-1111-1111-1111-111111111111"

	revoked, err := svc.IsRevoked(ctx, jti)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, svc.RevokeToken(ctx, jti, time.Minute))

	revoked, err = svc.IsRevoked(ctx, jti)
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestBlacklistService_RevocationExpires(t *testing.T) {
	svc, cleanup := setupTestBlacklist(t)
	defer cleanup()

	ctx := context.Background()
	jti := "22222222-2222-2222-2222-222222222222"

	require.NoError(t, svc.RevokeToken(ctx, jti, 10*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	revoked, err := svc.IsRevoked(ctx, jti)
	require.NoError(t, err)
	require.False(t, revoked, "the blacklist entry should have expired")
}
