package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenMetaKind is the tagged variant of what a Token is for.
type TokenMetaKind string

const (
	TokenMetaEmailConfirmation           TokenMetaKind = "email_confirmation"
	TokenMetaPasswordChange              TokenMetaKind = "password_change"
	TokenMetaAccountScopedConnString     TokenMetaKind = "account_scoped_connection_string"
	TokenMetaRoleScopedConnString        TokenMetaKind = "role_scoped_connection_string"
	TokenMetaTenantScopedConnString      TokenMetaKind = "tenant_scoped_connection_string"
)

// ConnectionStringScope is the bound scope embedded in a connection-string
// token. Only the fields implied by the owning Token's MultiTypeMeta.Kind
// are populated.
type ConnectionStringScope struct {
	AccountID   *uuid.UUID   `json:"account_id,omitempty"`
	TenantID    *uuid.UUID   `json:"tenant_id,omitempty"`
	Role        *string      `json:"role,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`

	// Scopes backs ServiceTokenScoped route checks (spec.md §4.2 step 4):
	// the gateway requires Scopes to be a superset of the route's declared
	// scopes.
	Scopes ScopeSet `json:"scopes,omitempty"`
}

// HasScopes reports whether this scope is a superset of required.
func (s ConnectionStringScope) HasScopes(required ScopeSet) bool {
	return s.Scopes.IsSupersetOf(required)
}

// Allows reports whether this scope grants at least the given permission
// on the given role (role check only applies to role-scoped tokens: pass
// "" to skip it).
func (s ConnectionStringScope) Allows(role string, required Permission) bool {
	if s.Role != nil && role != "" && *s.Role != role {
		return false
	}
	for _, p := range s.Permissions {
		if p.Satisfies(required) {
			return true
		}
	}
	return false
}

// MultiTypeMeta carries the variant-specific payload of a Token. For the
// email/password-change variants, CodeHash stores a bcrypt hash of a short
// random numeric code; the cleartext is returned exactly once to the
// issuing flow and never persisted (spec.md §4.4).
type MultiTypeMeta struct {
	Kind     TokenMetaKind          `json:"kind"`
	CodeHash string                 `json:"-"`
	Scope    *ConnectionStringScope `json:"scope,omitempty"`
}

// Token is an opaque, integer-identified bearer credential.
type Token struct {
	ID         int64          `json:"id" db:"id"`
	ExpiresAt  time.Time      `json:"expires_at" db:"expires_at"`
	Meta       MultiTypeMeta  `json:"meta" db:"-"`
	RevokedAt  *time.Time     `json:"revoked_at,omitempty" db:"revoked_at"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the token's expiry has passed as of now.
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsRevoked reports whether the token has been soft-deleted.
func (t *Token) IsRevoked() bool {
	return t.RevokedAt != nil
}

// Valid reports whether the token may still be presented successfully.
func (t *Token) Valid(now time.Time) bool {
	return !t.IsExpired(now) && !t.IsRevoked()
}
