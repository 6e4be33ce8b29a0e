package invitation

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
)

// ServiceInterface defines the interface for guest-invitation management.
type ServiceInterface interface {
	CreateInvitation(ctx context.Context, req *CreateInvitationRequest) (*models.GuestInvitation, error)
	GetInvitation(ctx context.Context, id uuid.UUID) (*models.GuestInvitation, error)
	ListInvitations(ctx context.Context, accountID uuid.UUID, filters *ListInvitationsFilters) ([]*models.GuestInvitation, int, error)
	AcceptInvitation(ctx context.Context, id uuid.UUID, acceptedBy uuid.UUID, roleName string) (*models.GuestInvitation, error)
	DeleteInvitation(ctx context.Context, id uuid.UUID) error
}

// CreateInvitationRequest represents a request to license an email to a
// guest role on an account, pending acceptance.
type CreateInvitationRequest struct {
	TenantID    uuid.UUID `json:"tenant_id" binding:"required"`
	AccountID   uuid.UUID `json:"account_id" binding:"required"`
	Email       string    `json:"email" binding:"required,email"`
	GuestRoleID uuid.UUID `json:"guest_role_id" binding:"required"`
	RoleName    string    `json:"role_name" binding:"required"`
	Permission  string    `json:"permission" binding:"required"`
	InvitedBy   uuid.UUID `json:"invited_by" binding:"required"`
	ExpiresIn   int       `json:"expires_in,omitempty"` // days until expiration (default: 7)
}

// ListInvitationsFilters defines filters for listing invitations.
type ListInvitationsFilters struct {
	Email     string
	Accepted  *bool
	InvitedBy *uuid.UUID
	Page      int
	PageSize  int
}
