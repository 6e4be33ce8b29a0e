package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantMetaKey is a closed set of recognized tenant metadata keys, plus an
// escape hatch for forward-compatible fields.
type TenantMetaKey string

const (
	TenantMetaLogoURL      TenantMetaKey = "logo_url"
	TenantMetaSupportEmail TenantMetaKey = "support_email"
	TenantMetaBillingPlan  TenantMetaKey = "billing_plan"
	TenantMetaOther        TenantMetaKey = "other"
)

// TenantMeta is the tenant's optional metadata map. Other carries keys
// outside the closed set above without losing them on round-trip.
type TenantMeta struct {
	LogoURL      *string           `json:"logo_url,omitempty"`
	SupportEmail *string           `json:"support_email,omitempty"`
	BillingPlan  *string           `json:"billing_plan,omitempty"`
	Other        map[string]string `json:"other,omitempty"`
}

// TenantStatusKind is the tagged variant of a tenant's lifecycle status.
type TenantStatusKind string

const (
	TenantStatusActive   TenantStatusKind = "active"
	TenantStatusVerified TenantStatusKind = "verified"
	TenantStatusTrashed  TenantStatusKind = "trashed"
	TenantStatusArchived TenantStatusKind = "archived"
)

// TenantStatus is a point in the tenant's status timeline. At and By are
// populated for every variant except Active, which is the implicit initial
// state.
type TenantStatus struct {
	Kind TenantStatusKind `json:"kind"`
	At   *time.Time       `json:"at,omitempty"`
	By   *uuid.UUID       `json:"by,omitempty"`
}

// IsTerminal reports whether the status forbids any further transition.
func (s TenantStatus) IsTerminal() bool {
	return s.Kind == TenantStatusArchived
}

// Tenant is a top-level ownership boundary; all business data is tenant
// scoped. A tenant always has at least one owner (enforced by the tenant
// service, not by this struct).
type Tenant struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description *string        `json:"description,omitempty" db:"description"`
	Owners      []uuid.UUID    `json:"owners" db:"-"`
	Managers    []uuid.UUID    `json:"managers,omitempty" db:"-"`
	Meta        *TenantMeta    `json:"meta,omitempty" db:"-"`
	Statuses    []TenantStatus `json:"statuses" db:"-"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// CurrentStatus returns the most recent entry of the status timeline,
// defaulting to Active for a freshly created tenant.
func (t *Tenant) CurrentStatus() TenantStatus {
	if len(t.Statuses) == 0 {
		return TenantStatus{Kind: TenantStatusActive}
	}
	return t.Statuses[len(t.Statuses)-1]
}

// IsOwner reports whether the given user id owns this tenant.
func (t *Tenant) IsOwner(userID uuid.UUID) bool {
	for _, id := range t.Owners {
		if id == userID {
			return true
		}
	}
	return false
}

// IsManagedBy reports whether the given account id manages this tenant.
func (t *Tenant) IsManagedBy(accountID uuid.UUID) bool {
	for _, id := range t.Managers {
		if id == accountID {
			return true
		}
	}
	return false
}
