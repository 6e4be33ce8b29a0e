package security_events

import (
	"github.com/lepista-tech/mycelium/identity/models"
)

// domainTriggerEventType maps a domain Trigger to the EventType recorded
// for it. Triggers outside this map still get logged, under
// EventDomainAccountMutation, rather than silently dropped.
var domainTriggerEventType = map[models.Trigger]EventType{
	models.TriggerGuestCreated:        EventDomainGuestCreated,
	models.TriggerGuestRoleUpdated:    EventDomainGuestRoleUpdated,
	models.TriggerTenantStatusChanged: EventDomainTenantStatusChange,
}

// FromDomainEvent bridges a models.DomainEvent emitted by a mutation use
// case into the SecurityEvent shape this package's Logger already knows how
// to batch, persist, and query.
func FromDomainEvent(event models.DomainEvent) *SecurityEvent {
	eventType, ok := domainTriggerEventType[event.Trigger]
	if !ok {
		eventType = EventDomainAccountMutation
	}

	severity := SeverityInfo
	result := "success"
	switch event.Result {
	case models.EventResultDenied:
		severity = SeverityWarning
		result = "denied"
	case models.EventResultFailure:
		severity = SeverityWarning
		result = "failure"
	}

	se := &SecurityEvent{
		ID:        event.ID,
		EventType: eventType,
		Severity:  severity,
		TenantID:  event.TenantID,
		UserID:    &event.ActorID,
		Action:    string(event.Trigger),
		Result:    result,
		Details:   event.Payload,
		CreatedAt: event.Timestamp,
	}
	return se
}
