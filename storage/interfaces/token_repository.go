package interfaces

import (
	"context"

	"github.com/lepista-tech/mycelium/identity/models"
)

// TokenRepository defines the interface for opaque-token data access:
// connection strings, email-confirmation codes, and password-change codes
// (spec.md §4.4).
type TokenRepository interface {
	Create(ctx context.Context, token *models.Token) error
	GetByID(ctx context.Context, id int64) (*models.Token, error)

	// Revoke soft-deletes a token: Validate must reject it afterwards, but
	// it remains queryable (GetByID) for audit.
	Revoke(ctx context.Context, id int64) error
}
