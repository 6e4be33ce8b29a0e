package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
)

// InvitationRepository defines the interface for guest-invitation storage.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.GuestInvitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GuestInvitation, error)
	GetPendingByEmailAndAccount(ctx context.Context, accountID uuid.UUID, email string) (*models.GuestInvitation, error)
	List(ctx context.Context, accountID uuid.UUID, filters *InvitationFilters) ([]*models.GuestInvitation, error)
	Count(ctx context.Context, accountID uuid.UUID, filters *InvitationFilters) (int, error)
	Update(ctx context.Context, invitation *models.GuestInvitation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvitationFilters defines filters for listing invitations.
type InvitationFilters struct {
	Email     string
	Accepted  *bool
	InvitedBy *uuid.UUID
	Page      int
	PageSize  int
}
