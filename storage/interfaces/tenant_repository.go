package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
)

// TenantRepository defines the interface for tenant data access.
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)

	Update(ctx context.Context, tenant *models.Tenant) error

	// AppendStatus pushes a new entry onto the tenant's status timeline
	// (spec.md §4.2's tenant lifecycle), persisted as part of Update by
	// most callers but exposed separately for the cached wrapper's
	// invalidation hook.
	AppendStatus(ctx context.Context, id uuid.UUID, status models.TenantStatus) error

	List(ctx context.Context, filters *TenantFilters) ([]*models.Tenant, error)
}

// TenantFilters represents filters for tenant queries.
type TenantFilters struct {
	StatusKind *models.TenantStatusKind
	OwnerID    *uuid.UUID

	// ManagerAccountID narrows to tenants whose Managers list contains this
	// account id — the query the Profile Evaluator's baseline resolution
	// runs to populate Baseline.ManagedTenants.
	ManagerAccountID *uuid.UUID

	Search   *string
	Page     int
	PageSize int
}
