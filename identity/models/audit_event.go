package models

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is what a mutation use case (account/tenant/guest change)
// emits. It is both a structured audit log line and, when Trigger names a
// subscribed webhook, the seed of a WebHookPayloadArtifact (spec.md §2:
// "Domain mutations enqueue events into the Webhook Dispatcher").
type DomainEvent struct {
	ID        uuid.UUID              `json:"id"`
	Trigger   Trigger                `json:"trigger"`
	ActorID   uuid.UUID              `json:"actor_id"`
	TenantID  *uuid.UUID             `json:"tenant_id,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	Result    EventResult            `json:"result"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventResult is the three-way outcome an audited action can record.
type EventResult string

const (
	EventResultSuccess EventResult = "success"
	EventResultFailure EventResult = "failure"
	EventResultDenied  EventResult = "denied"
)
