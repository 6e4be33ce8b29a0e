package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
)

// AccountRepository defines the interface for account data access. An
// account's relationship to the users that administer it is stored
// separately from the account row itself (see GetOwners), mirroring how
// Tenant keeps Owners/Managers as a denormalized projection rather than a
// foreign key on the principal.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	GetBySlug(ctx context.Context, slug string) (*models.Account, error)

	Update(ctx context.Context, account *models.Account) error

	// Delete soft-deletes via models.Account.SoftDelete's slug-renaming
	// convention; callers that want a hard delete use a Postgres migration,
	// not this interface.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, filters *AccountFilters) ([]*models.Account, error)

	// GetByOwnerEmail returns every account the given user email owns or
	// co-owns, the set the Profile Evaluator's baseline resolution starts
	// from (original_source's `fetch_profile_from_email`).
	GetByOwnerEmail(ctx context.Context, email string) ([]*models.Account, error)

	// GetOwners returns the owner projection for an account — the users
	// who administer it (spec.md §3, original_source's Owner DTO). A
	// plain User-kind account has exactly one owner, flagged as principal;
	// a Subscription-kind account may have several.
	GetOwners(ctx context.Context, accountID uuid.UUID) ([]models.Owner, error)
}

// AccountFilters represents filters for account queries.
type AccountFilters struct {
	TypeKind *models.AccountTypeKind
	TenantID *uuid.UUID
	IsActive *bool
	Search   *string
	Page     int
	PageSize int
}
