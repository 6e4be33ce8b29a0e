package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// ServiceInterface defines the interface for user service operations.
type ServiceInterface interface {
	Create(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *interfaces.UserFilters) ([]*models.User, error)
	Count(ctx context.Context, filters *interfaces.UserFilters) (int, error)

	// Authenticate verifies a password against the stored hash for an
	// internal-provider user, returning the user on success.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)

	// ChangePassword validates and stores a new password hash for an
	// internal-provider user.
	ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
}
