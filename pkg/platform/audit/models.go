package audit

import (
	"time"

	id "nestly/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: agreement
	// lifecycle transitions that a dispute or regulator may ask about.
	// These require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and
	// operational visibility. These can be sampled with short retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category    EventCategory
	Timestamp   time.Time
	AgreementID id.AgreementID
	MatchID     id.MatchID
	ActorID     id.UserID
	Action      string
	Detail      string
	RequestID   string
}

// AuditEvent names every action the engine records.
type AuditEvent string

const (
	EventDraftCreated   AuditEvent = "agreement_draft_created"
	EventDataUpdated    AuditEvent = "agreement_data_updated"
	EventGenerated      AuditEvent = "agreement_generated"
	EventSentForSigning AuditEvent = "agreement_sent_for_signing"
	EventCancelled      AuditEvent = "agreement_cancelled"
)

// eventCategories maps actions to categories; the map is the source of truth
// so producers cannot disagree about routing.
var eventCategories = map[AuditEvent]EventCategory{
	EventDraftCreated:   CategoryOperations,
	EventDataUpdated:    CategoryOperations,
	EventGenerated:      CategoryCompliance,
	EventSentForSigning: CategoryCompliance,
	EventCancelled:      CategoryCompliance,
}

// Category resolves the category for an action, defaulting to operations.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}
