package models

import "github.com/google/uuid"

// LicensedResource is a denormalized grant of a guest role with a
// permission on an account within a tenant, associated with a user email.
// It is the unit the Profile Evaluator matches against (spec.md §3).
type LicensedResource struct {
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	AccountID  uuid.UUID  `json:"account_id" db:"account_id"`
	Email      string     `json:"email" db:"email"`
	GuestRole  string     `json:"guest_role" db:"guest_role"`
	Permission Permission `json:"permission" db:"permission"`
	Verified   bool       `json:"verified" db:"verified"`
}

// Grants reports whether this license satisfies the given role name and
// minimum permission, and is verified — unless acceptInvitation is set, in
// which case an unverified, exact-permission match is required instead
// (spec.md §4.1 rule 5).
func (l LicensedResource) Grants(role string, required Permission, acceptInvitation bool) bool {
	if l.GuestRole != role {
		return false
	}
	if acceptInvitation {
		return !l.Verified && l.Permission == required
	}
	return l.Verified && l.Permission.Satisfies(required)
}
