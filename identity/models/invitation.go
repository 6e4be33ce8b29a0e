package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestInvitation is the pending grant created when a tenant manager
// licenses an email to a guest role on an account before that email has
// confirmed the grant. It is the write-side counterpart of an unverified
// LicensedResource: until Accept runs, Grants on the resulting license
// returns false for every chain except accept_invitation (spec.md §4.1
// rule 5).
type GuestInvitation struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	AccountID   uuid.UUID  `json:"account_id" db:"account_id"`
	Email       string     `json:"email" db:"email"`
	GuestRoleID uuid.UUID  `json:"guest_role_id" db:"guest_role_id"`
	Permission  Permission `json:"permission" db:"permission"`
	InvitedBy   uuid.UUID  `json:"invited_by" db:"invited_by"`
	ExpiresAt   time.Time  `json:"expires_at" db:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	AcceptedBy  *uuid.UUID `json:"accepted_by,omitempty" db:"accepted_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether the invitation's window has passed.
func (i *GuestInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsAccepted reports whether the invitation has already been accepted.
func (i *GuestInvitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// AsUnverifiedLicense projects the invitation as the unverified
// LicensedResource the accept_invitation chain matches against.
func (i *GuestInvitation) AsUnverifiedLicense(roleName string) LicensedResource {
	return LicensedResource{
		TenantID:   i.TenantID,
		AccountID:  i.AccountID,
		Email:      i.Email,
		GuestRole:  roleName,
		Permission: i.Permission,
		Verified:   false,
	}
}
