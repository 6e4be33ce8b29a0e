package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountTypeKind is the tagged variant of an account's relationship to the
// rest of the domain model (spec.md §3).
type AccountTypeKind string

const (
	AccountTypeUser          AccountTypeKind = "user"
	AccountTypeSubscription  AccountTypeKind = "subscription"
	AccountTypeTenantManager AccountTypeKind = "tenant_manager"
	AccountTypeRoleRelated   AccountTypeKind = "role_related"
	AccountTypeActorRelated  AccountTypeKind = "actor_related"
	AccountTypeStaff         AccountTypeKind = "staff"
)

// AccountType carries the variant-specific fields. Only the fields implied
// by Kind are populated; callers must switch exhaustively on Kind rather
// than rely on zero values.
type AccountType struct {
	Kind        AccountTypeKind `json:"kind"`
	TenantID    *uuid.UUID      `json:"tenant_id,omitempty"`
	GuestRoleID *uuid.UUID      `json:"guest_role_id,omitempty"`
}

// Account is a workload or user container within a tenant, or a
// system-wide staff/manager entity.
type Account struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Slug       string          `json:"slug" db:"slug"`
	Name       string          `json:"name" db:"name"`
	Type       AccountType     `json:"type" db:"-"`
	IsActive   bool            `json:"is_active" db:"is_active"`
	IsChecked  bool            `json:"is_checked" db:"is_checked"`
	IsArchived bool            `json:"is_archived" db:"is_archived"`
	IsDefault  bool            `json:"is_default" db:"is_default"`
	Tags       []string        `json:"tags,omitempty" db:"-"`
	Metadata   map[string]string `json:"metadata,omitempty" db:"-"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

var slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a display name. It is idempotent:
// Slugify(Slugify(x)) == Slugify(x) (spec.md §8).
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugNonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "account"
	}
	return s
}

// Rename re-derives the slug from a new display name, matching spec.md's
// invariant that the slug is re-derived on every name change.
func (a *Account) Rename(name string) {
	a.Name = name
	a.Slug = Slugify(name)
}

// SoftDelete renames the slug to `<uuid>-deleted` and clears metadata, per
// spec.md's soft-deletion invariant.
func (a *Account) SoftDelete() {
	a.Slug = fmt.Sprintf("%s-deleted", a.ID.String())
	a.Metadata = nil
	a.IsActive = false
	a.IsArchived = true
}
