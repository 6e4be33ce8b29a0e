package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
)

// GuestRoleRepository defines the interface for guest-role data access.
type GuestRoleRepository interface {
	Create(ctx context.Context, role *models.GuestRole) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GuestRole, error)
	GetBySlug(ctx context.Context, slug string) (*models.GuestRole, error)
	Update(ctx context.Context, role *models.GuestRole) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *GuestRoleFilters) ([]*models.GuestRole, error)

	// GetAll is used by the acyclicity DFS: it needs every role's id and
	// children, never a single page.
	GetAll(ctx context.Context) ([]*models.GuestRole, error)
}

// GuestRoleFilters represents filters for guest-role queries.
type GuestRoleFilters struct {
	System   *bool
	Search   *string
	Page     int
	PageSize int
}
