package models

import (
	"time"

	"github.com/google/uuid"
)

// Trigger enumerates the domain events a webhook subscriber can be bound
// to. This is the closed set spec.md §3 gives as a representative sample;
// new triggers are added here, never inferred from a free-form string.
type Trigger string

const (
	TriggerUserAccountCreated         Trigger = "user-account-created"
	TriggerUserAccountUpdated         Trigger = "user-account-updated"
	TriggerUserAccountDeleted         Trigger = "user-account-deleted"
	TriggerSubscriptionAccountCreated Trigger = "subscription-account-created"
	TriggerGuestCreated               Trigger = "guest-created"
	TriggerGuestRoleUpdated           Trigger = "guest-role-updated"
	TriggerTenantStatusChanged        Trigger = "tenant-status-changed"
)

// WebHook is a registered outbound subscriber.
type WebHook struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	TargetURL   string    `json:"target_url" db:"target_url"`
	Trigger     Trigger   `json:"trigger" db:"trigger"`
	IsActive    bool      `json:"is_active" db:"is_active"`

	// EncryptedSecret is the AEAD-encrypted HttpSecret at rest. On read,
	// callers MUST present Secret() instead of this field, which redacts.
	EncryptedSecret []byte `json:"-" db:"encrypted_secret"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RedactedSecret is the sentinel substituted for a webhook's secret on any
// read path outside the dispatcher (spec.md §4.3).
const RedactedSecret = "********"

// HasSecret reports whether the webhook was registered with a signing
// secret.
func (w *WebHook) HasSecret() bool {
	return len(w.EncryptedSecret) > 0
}

// ArtifactStatusKind is the tagged variant of a webhook delivery artifact.
type ArtifactStatusKind string

const (
	ArtifactPending   ArtifactStatusKind = "pending"
	ArtifactInFlight  ArtifactStatusKind = "in_flight"
	ArtifactSucceeded ArtifactStatusKind = "succeeded"
	ArtifactFailed    ArtifactStatusKind = "failed"
)

// ArtifactStatus carries the last_status/last_reason pair only meaningful
// for Failed.
type ArtifactStatus struct {
	Kind       ArtifactStatusKind `json:"kind"`
	LastStatus *int               `json:"last_status,omitempty"`
	LastReason string             `json:"last_reason,omitempty"`
}

// WebHookPayloadArtifact is a persisted event awaiting or undergoing
// at-least-once delivery to every active subscriber of its Trigger.
type WebHookPayloadArtifact struct {
	ID             uuid.UUID      `json:"id" db:"id"` // correspondence id
	Trigger        Trigger        `json:"trigger" db:"trigger"`
	Body           []byte         `json:"-" db:"body"`
	Status         ArtifactStatus `json:"status" db:"-"`
	Attempts       int            `json:"attempts" db:"attempts"`
	NextAttemptAt  time.Time      `json:"next_attempt_at" db:"next_attempt_at"`
	LeaseExpiresAt *time.Time     `json:"-" db:"lease_expires_at"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// HookResponse records one subscriber's outcome for one artifact delivery
// attempt, the concrete evidence behind the at-least-once invariant.
type HookResponse struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ArtifactID    uuid.UUID `json:"artifact_id" db:"artifact_id"`
	WebHookID     uuid.UUID `json:"webhook_id" db:"webhook_id"`
	AttemptNumber int       `json:"attempt_number" db:"attempt_number"`
	StatusCode    *int      `json:"status_code,omitempty" db:"status_code"`
	Succeeded     bool      `json:"succeeded" db:"succeeded"`
	Error         string    `json:"error,omitempty" db:"error"`
	AttemptedAt   time.Time `json:"attempted_at" db:"attempted_at"`
}
