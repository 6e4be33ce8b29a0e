package role

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// ServiceInterface defines the interface for guest-role management.
type ServiceInterface interface {
	Create(ctx context.Context, req *CreateGuestRoleRequest) (*models.GuestRole, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.GuestRole, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateGuestRoleRequest) (*models.GuestRole, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *interfaces.GuestRoleFilters) ([]*models.GuestRole, error)

	// AddChild links childID under parentID, rejecting the link if it would
	// close a cycle in the Children DAG.
	AddChild(ctx context.Context, parentID, childID uuid.UUID) error
	RemoveChild(ctx context.Context, parentID, childID uuid.UUID) error
}

// CreateGuestRoleRequest represents a request to create a guest role.
type CreateGuestRoleRequest struct {
	Name        string     `json:"name" binding:"required,min=3,max=255"`
	Description *string    `json:"description,omitempty"`
	Permission  string     `json:"permission" binding:"required"`
	System      bool       `json:"system,omitempty"`
}

// UpdateGuestRoleRequest represents a request to update a guest role.
type UpdateGuestRoleRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Permission  *string `json:"permission,omitempty"`
}
