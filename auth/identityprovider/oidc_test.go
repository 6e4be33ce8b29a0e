package identityprovider

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lepista-tech/mycelium/config"
	"github.com/stretchr/testify/require"
)

const testKID = "test-key-1"

func startOIDCTestServer(t *testing.T, priv *rsa.PrivateKey) *httptest.Server {
	t.Helper()

	jwk := map[string]string{
		"kty": "RSA",
		"kid": testKID,
		"use": "sig",
		"alg": "RS256",
		"n":   base64.RawURLEncoding.EncodeToString(priv.PublicKey.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(priv.PublicKey.E)).Bytes()),
	}
	jwksDoc := map[string]any{"keys": []map[string]string{jwk}}

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"jwks_uri": server.URL + "/jwks.json"})
	})
	mux.HandleFunc("/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(jwksDoc)
	})
	server = httptest.NewServer(mux)
	return server
}

func signTestIDToken(t *testing.T, priv *rsa.PrivateKey, issuer, audience, email string, exp time.Time) string {
	t.Helper()
	claims := oidcClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKID
	signed, err := tok.SignedString(priv)
	require.NoError(t, err)
	return signed
}

func TestOIDCProvider_AcceptsValidToken(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	server := startOIDCTestServer(t, priv)
	defer server.Close()

	ctx := context.Background()
	jwksCache := NewJWKSCache(nil, server.Client())
	cfg := config.OIDCIssuerConfig{IssuerURL: server.URL, Audience: "mycelium-gateway", JWKSCacheTTL: time.Minute}

	provider, err := NewOIDCProvider(ctx, cfg, jwksCache, server.Client())
	require.NoError(t, err)

	token := signTestIDToken(t, priv, server.URL, "mycelium-gateway", "alice@example.com", time.Now().Add(time.Hour))

	result, err := provider.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", result.Email)
	require.Nil(t, result.Scope)
}

func TestOIDCProvider_RejectsWrongAudience(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	server := startOIDCTestServer(t, priv)
	defer server.Close()

	ctx := context.Background()
	jwksCache := NewJWKSCache(nil, server.Client())
	cfg := config.OIDCIssuerConfig{IssuerURL: server.URL, Audience: "mycelium-gateway", JWKSCacheTTL: time.Minute}

	provider, err := NewOIDCProvider(ctx, cfg, jwksCache, server.Client())
	require.NoError(t, err)

	token := signTestIDToken(t, priv, server.URL, "someone-else", "alice@example.com", time.Now().Add(time.Hour))

	_, err = provider.Authenticate(ctx, token)
	require.Error(t, err)
}

func TestOIDCProvider_RejectsExpiredToken(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	server := startOIDCTestServer(t, priv)
	defer server.Close()

	ctx := context.Background()
	jwksCache := NewJWKSCache(nil, server.Client())
	cfg := config.OIDCIssuerConfig{IssuerURL: server.URL, Audience: "mycelium-gateway", JWKSCacheTTL: time.Minute}

	provider, err := NewOIDCProvider(ctx, cfg, jwksCache, server.Client())
	require.NoError(t, err)

	token := signTestIDToken(t, priv, server.URL, "mycelium-gateway", "alice@example.com", time.Now().Add(-time.Hour))

	_, err = provider.Authenticate(ctx, token)
	require.Error(t, err)
}

func TestDiscoverJWKSURI_ReadsDiscoveryDocument(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	server := startOIDCTestServer(t, priv)
	defer server.Close()

	uri, err := discoverJWKSURI(context.Background(), server.Client(), server.URL)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%s/jwks.json", server.URL), uri)
}
