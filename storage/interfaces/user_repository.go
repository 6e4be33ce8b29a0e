package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
)

// UserRepository defines the interface for user data access. Users are
// tenant-independent principals (spec.md §3) — tenant scoping happens one
// layer up, through Account/LicensedResource/GuestRole, never here.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user by username. Username is optional on
	// User (spec.md §3) so callers should expect a not-found error for
	// users that never set one.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	GetByEmail(ctx context.Context, email string) (*models.User, error)

	Update(ctx context.Context, u *models.User) error

	// Delete hard-deletes a user. User carries no deleted_at column —
	// deactivation is expressed through IsActive instead.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, filters *UserFilters) ([]*models.User, error)

	Count(ctx context.Context, filters *UserFilters) (int, error)
}

// UserFilters represents filters for user queries.
type UserFilters struct {
	IsActive *bool
	Search   *string // Search in username, email, first_name, last_name
	Page     int
	PageSize int
}
