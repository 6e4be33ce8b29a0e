package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
)

// LicensedResourceRepository is the storage side of the grants the Profile
// Evaluator matches against. It is one of the few repository interfaces the
// core actually consumes (spec.md §1).
type LicensedResourceRepository interface {
	Create(ctx context.Context, resource *models.LicensedResource) error

	// GetByAccountAndEmail returns every license (verified or not) granted
	// to email on accountID, across every tenant the account belongs to.
	GetByAccountAndEmail(ctx context.Context, accountID uuid.UUID, email string) ([]models.LicensedResource, error)

	// GetByEmail returns every license email holds, across all accounts —
	// the set fetch_profile_from_email's parallel fetch needs.
	GetByEmail(ctx context.Context, email string) ([]models.LicensedResource, error)

	// Verify flips the unverified license matching tenantID/accountID/email/
	// guestRole/permission to verified, the effect of accepting an
	// invitation (spec.md §4.1 rule 5).
	Verify(ctx context.Context, tenantID, accountID uuid.UUID, email, guestRole string, permission models.Permission) error

	Delete(ctx context.Context, tenantID, accountID uuid.UUID, email, guestRole string) error
}

// ProfileFetching is the narrow read-side interface the Profile Evaluator's
// callers (e.g. the internal-JWT identity provider) use to materialize a
// models.Profile for an authenticated email (spec.md §4.1,
// original_source's `fetch_profile_from_email`).
type ProfileFetching interface {
	FetchProfileFromEmail(ctx context.Context, email string) (*models.Profile, error)
}
