package token

import "time"

// ServiceInterface defines the interface for internal token issuance and
// validation, so collaborators (the inbound auth chain, tests) can fake it.
type ServiceInterface interface {
	// IssueAccessToken signs a new internal JWT for email.
	IssueAccessToken(email string, ttl time.Duration) (string, error)

	// ValidateAccessToken verifies signature, expiry, and issuer.
	ValidateAccessToken(tokenString string) (*Claims, error)
}
