package identityprovider

import (
	"context"
	"testing"
	"time"

	"github.com/lepista-tech/mycelium/auth/token"
	"github.com/lepista-tech/mycelium/config"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(&config.SecurityConfig{JWT: config.JWTConfig{Secret: "test-secret-value"}})
	require.NoError(t, err)
	return svc
}

func TestInternalJWTProvider_AcceptsValidToken(t *testing.T) {
	tokens := newTestTokenService(t)
	signed, err := tokens.IssueAccessToken("alice@example.com", time.Hour)
	require.NoError(t, err)

	provider := NewInternalJWTProvider(tokens)
	result, err := provider.Authenticate(context.Background(), signed)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", result.Email)
	require.Nil(t, result.Scope)
}

func TestInternalJWTProvider_RejectsGarbage(t *testing.T) {
	tokens := newTestTokenService(t)
	provider := NewInternalJWTProvider(tokens)

	_, err := provider.Authenticate(context.Background(), "not-a-jwt")
	require.Error(t, err)
}
