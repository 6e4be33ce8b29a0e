package identityprovider

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lepista-tech/mycelium/internal/cache"
)

// jwkSet is the RFC 7517 JSON Web Key Set shape Mycelium needs to parse:
// RSA signing keys only, since every OIDC issuer this gateway has been
// configured against to date signs with RS256.
type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseJWKSet(raw []byte) (map[string]*rsa.PublicKey, error) {
	var set jwkSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("jwk %q: invalid modulus: %w", k.Kid, err)
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("jwk %q: invalid exponent: %w", k.Kid, err)
		}
		e := 0
		for _, b := range eBytes {
			e = e<<8 | int(b)
		}
		keys[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("JWKS contains no usable RSA keys")
	}
	return keys, nil
}

// jwksKeySet resolves a jwt/v5 Keyfunc against a parsed key-by-kid map.
type jwksKeySet struct {
	keys map[string]*rsa.PublicKey
}

func (s *jwksKeySet) keyfunc(t *jwt.Token) (interface{}, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("token has no kid header")
	}
	key, ok := s.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no JWKS key for kid %q", kid)
	}
	return key, nil
}

// JWKSCache resolves an issuer's signing keys, caching the raw JWKS
// document in Redis (shared across instances, spec.md §4.4/§5 "JWKS cache
// ... TTL") and the parsed key set in process memory, so a verification on
// the hot path never re-parses JSON per request.
type JWKSCache struct {
	redis      *cache.Cache
	httpClient *http.Client

	mu     sync.Mutex
	parsed map[string]*cachedKeySet // keyed by issuer URL
}

type cachedKeySet struct {
	set       *jwksKeySet
	expiresAt time.Time
}

// NewJWKSCache builds a JWKSCache backed by the given Redis-wrapping cache.
// redis may be nil, in which case every fetch goes to the network.
func NewJWKSCache(redis *cache.Cache, httpClient *http.Client) *JWKSCache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSCache{redis: redis, httpClient: httpClient, parsed: make(map[string]*cachedKeySet)}
}

// Keyfunc returns the jwt.Keyfunc for issuer's JWKS at jwksURI, refreshing
// from Redis (or, on a Redis miss, the network) once ttl has elapsed.
func (c *JWKSCache) Keyfunc(ctx context.Context, issuer, jwksURI string, ttl time.Duration) (jwt.Keyfunc, error) {
	c.mu.Lock()
	if entry, ok := c.parsed[issuer]; ok && time.Now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.set.keyfunc, nil
	}
	c.mu.Unlock()

	raw, err := c.fetchRaw(ctx, issuer, jwksURI, ttl)
	if err != nil {
		return nil, classifyErr(err)
	}

	keys, err := parseJWKSet([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS for issuer %s: %w", issuer, err)
	}
	set := &jwksKeySet{keys: keys}

	c.mu.Lock()
	c.parsed[issuer] = &cachedKeySet{set: set, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()

	return set.keyfunc, nil
}

func (c *JWKSCache) fetchRaw(ctx context.Context, issuer, jwksURI string, ttl time.Duration) (string, error) {
	cacheKey := "jwks:" + issuer

	if c.redis != nil && c.redis.IsAvailable() {
		var raw string
		if err := c.redis.Get(ctx, cacheKey, &raw); err == nil {
			return raw, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build JWKS request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("JWKS fetch for %s returned status %d", issuer, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read JWKS response: %w", err)
	}
	raw := strings.TrimSpace(string(body))

	if c.redis != nil && c.redis.IsAvailable() {
		_ = c.redis.Set(ctx, cacheKey, raw, ttl)
	}

	return raw, nil
}
