package identityprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lepista-tech/mycelium/config"
)

// oidcClaims is the subset of an external ID token Mycelium cares about:
// the subject's email plus the standard registered claims, which jwt/v5
// validates automatically (exp, nbf) or on request (iss, aud).
type oidcClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// discoveryDocument is the handful of fields Mycelium needs from an OIDC
// provider's /.well-known/openid-configuration document.
type discoveryDocument struct {
	JWKSURI string `json:"jwks_uri"`
}

// discoverJWKSURI fetches issuerURL's discovery document and returns its
// jwks_uri.
func discoverJWKSURI(ctx context.Context, client *http.Client, issuerURL string) (string, error) {
	discoveryURL := strings.TrimRight(issuerURL, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build discovery request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to perform OIDC discovery: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OIDC discovery for %s returned status %d", issuerURL, resp.StatusCode)
	}
	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to decode OIDC discovery document: %w", err)
	}
	if doc.JWKSURI == "" {
		return "", fmt.Errorf("OIDC discovery document for %s has no jwks_uri", issuerURL)
	}
	return doc.JWKSURI, nil
}

// OIDCProvider is one configured external issuer in chain provider #2
// (spec.md §4.4): fetch JWKS, cache by kid, verify iss/aud/exp/nbf.
type OIDCProvider struct {
	cfg        config.OIDCIssuerConfig
	jwksURI    string
	cache      *JWKSCache
	httpClient *http.Client
}

// NewOIDCProvider builds an OIDCProvider for cfg, resolving its jwks_uri
// via discovery when cfg.JWKSURI is blank.
func NewOIDCProvider(ctx context.Context, cfg config.OIDCIssuerConfig, cache *JWKSCache, httpClient *http.Client) (*OIDCProvider, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	jwksURI := cfg.JWKSURI
	if jwksURI == "" {
		uri, err := discoverJWKSURI(ctx, httpClient, cfg.IssuerURL)
		if err != nil {
			return nil, classifyErr(err)
		}
		jwksURI = uri
	}
	return &OIDCProvider{cfg: cfg, jwksURI: jwksURI, cache: cache, httpClient: httpClient}, nil
}

func (p *OIDCProvider) Name() string { return "oidc:" + p.cfg.IssuerURL }

func (p *OIDCProvider) Authenticate(ctx context.Context, bearer string) (*Result, error) {
	ttl := p.cfg.JWKSCacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	keyfunc, err := p.cache.Keyfunc(ctx, p.cfg.IssuerURL, p.jwksURI, ttl)
	if err != nil {
		return nil, err
	}

	claims := &oidcClaims{}
	opts := []jwt.ParserOption{jwt.WithIssuer(p.cfg.IssuerURL)}
	if p.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(p.cfg.Audience))
	}
	parsed, err := jwt.ParseWithClaims(bearer, claims, keyfunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("oidc token rejected by issuer %s: %w", p.cfg.IssuerURL, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("oidc token rejected by issuer %s", p.cfg.IssuerURL)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("oidc token from issuer %s is missing an email claim", p.cfg.IssuerURL)
	}
	return &Result{Email: claims.Email}, nil
}
