package models

import "github.com/google/uuid"

// Owner is a projection of a tenant owner attached to a Profile, grounded
// on original_source's `Owner` DTO.
type Owner struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   *string   `json:"first_name,omitempty"`
	LastName    *string   `json:"last_name,omitempty"`
	Username    *string   `json:"username,omitempty"`
	IsPrincipal bool      `json:"is_principal"`
}

// Profile is the per-request authorization context derived from an
// authenticated principal. Profiles are immutable once constructed and are
// shared by reference for the remainder of the request (spec.md §3).
type Profile struct {
	Email             string             `json:"email"`
	AccountID         uuid.UUID          `json:"acc_id"`
	IsStaff           bool               `json:"is_staff"`
	IsManager         bool               `json:"is_manager"`
	Owners            []Owner            `json:"owners,omitempty"`
	LicensedResources []LicensedResource `json:"licensed_resources,omitempty"`
	VerboseStatus     string             `json:"verbose_status,omitempty"`
}

// HasLicenses reports whether the profile carries an explicit (possibly
// empty) set of licensed resources, distinguishing "no grants fetched" from
// "fetched and found none".
func (p Profile) HasLicenses() bool {
	return p.LicensedResources != nil
}
