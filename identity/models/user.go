package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProviderKind is the tagged variant of how a User authenticates.
type ProviderKind string

const (
	ProviderInternal ProviderKind = "internal"
	ProviderExternal ProviderKind = "external"
)

// Provider carries exactly one of the Internal or External variant's
// fields, selected by Kind (spec.md §3: "exactly one provider").
type Provider struct {
	Kind ProviderKind `json:"kind"`

	// Internal
	PasswordHash string `json:"-"`

	// External
	Issuer  string `json:"issuer,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// User is a principal identified by a unique id and a normalized email.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName *string   `json:"first_name,omitempty" db:"first_name"`
	LastName  *string   `json:"last_name,omitempty" db:"last_name"`
	Username  *string   `json:"username,omitempty" db:"username"`
	Provider  Provider  `json:"provider" db:"-"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address the way every write
// path in this package expects it to already be normalized.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
