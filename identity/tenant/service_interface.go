package tenant

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// ServiceInterface defines the interface for tenant service operations.
type ServiceInterface interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error)
	AddOwner(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Tenant, error)
	RemoveOwner(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Tenant, error)
	AddManager(ctx context.Context, id uuid.UUID, accountID uuid.UUID) (*models.Tenant, error)
	RemoveManager(ctx context.Context, id uuid.UUID, accountID uuid.UUID) (*models.Tenant, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, kind models.TenantStatusKind, by uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, filters *interfaces.TenantFilters) ([]*models.Tenant, error)
}
