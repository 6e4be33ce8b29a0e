package webhook

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// ServiceInterface defines the interface for webhook subscriber CRUD.
// Delivery itself is webhookdispatch's concern, not this package's.
type ServiceInterface interface {
	Create(ctx context.Context, req *CreateWebhookRequest) (*models.WebHook, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.WebHook, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateWebhookRequest) (*models.WebHook, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *interfaces.WebhookFilters) ([]*models.WebHook, error)

	// RevealSecret decrypts and returns the webhook's signing secret. Only
	// the Webhook Dispatcher should ever call this; every other read path
	// gets models.RedactedSecret instead (spec.md §4.3).
	RevealSecret(ctx context.Context, w *models.WebHook) (string, error)
}

// CreateWebhookRequest represents a request to register a new webhook.
type CreateWebhookRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description *string        `json:"description,omitempty"`
	TargetURL   string         `json:"target_url" binding:"required,url"`
	Trigger     models.Trigger `json:"trigger" binding:"required"`
	Secret      string         `json:"secret" binding:"required,min=16"`
	IsActive    bool           `json:"is_active"`
}

// UpdateWebhookRequest represents a request to update a webhook.
type UpdateWebhookRequest struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	TargetURL   *string         `json:"target_url,omitempty"`
	Trigger     *models.Trigger `json:"trigger,omitempty"`
	Secret      *string         `json:"secret,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
}
