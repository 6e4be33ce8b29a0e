package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
)

// WebhookRepository defines the interface for webhook subscriber data access.
type WebhookRepository interface {
	Create(ctx context.Context, webhook *models.WebHook) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WebHook, error)

	// GetActiveByTrigger returns every active subscriber bound to trigger,
	// the set the Webhook Dispatcher fans an artifact out to.
	GetActiveByTrigger(ctx context.Context, trigger models.Trigger) ([]*models.WebHook, error)

	Update(ctx context.Context, webhook *models.WebHook) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *WebhookFilters) ([]*models.WebHook, error)
}

// WebhookFilters represents filters for webhook subscriber queries.
type WebhookFilters struct {
	Trigger  *models.Trigger
	IsActive *bool
	Page     int
	PageSize int
}

// ArtifactRepository defines the interface for webhook payload artifact
// data access — the at-least-once delivery queue.
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *models.WebHookPayloadArtifact) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WebHookPayloadArtifact, error)

	// ClaimDue leases up to limit artifacts whose NextAttemptAt has passed
	// and whose lease (if any) has expired, stamping LeaseExpiresAt so
	// concurrent dispatcher workers don't double-claim.
	ClaimDue(ctx context.Context, now time.Time, leaseFor time.Duration, limit int) ([]*models.WebHookPayloadArtifact, error)

	Update(ctx context.Context, artifact *models.WebHookPayloadArtifact) error
}

// HookResponseRepository defines the interface for per-subscriber delivery
// outcome records — the evidence behind the at-least-once invariant.
type HookResponseRepository interface {
	Create(ctx context.Context, response *models.HookResponse) error
	GetByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*models.HookResponse, error)
}
