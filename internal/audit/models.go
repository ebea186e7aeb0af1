package audit

import (
	"time"

	id "regula/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// submissions, decisions, issuances. Long retention required.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events that change what an entity is allowed
	// to do: suspensions, revocations, reactivations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine workflow activity useful for
	// debugging and operational visibility. Can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from workflow logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	// Subject is the id of the record the event is about (application,
	// license, or action id).
	Subject  string
	Action   string
	EntityID id.EntityID
	// ActorID is the staff member who triggered the operation, when known.
	ActorID  id.StaffID
	Decision string
	Reason   string
	// RequestID is the correlation id from the HTTP request context.
	RequestID string
}

// AuditEvent names every action the engine records.
type AuditEvent string

const (
	// Application workflow events
	EventApplicationSubmitted AuditEvent = "application_submitted"
	EventApplicationAdvanced  AuditEvent = "application_advanced"
	EventApplicationApproved  AuditEvent = "application_approved"
	EventApplicationDenied    AuditEvent = "application_denied"

	// License record events
	EventLicenseIssued        AuditEvent = "license_issued"
	EventLicenseStatusChanged AuditEvent = "license_status_changed"

	// Renewal workflow events
	EventRenewalInitiated AuditEvent = "renewal_initiated"
	EventRenewalDecided   AuditEvent = "renewal_decided"

	// Remedial action workflow events
	EventActionCreated   AuditEvent = "action_created"
	EventActionSubmitted AuditEvent = "action_submitted"
	EventActionDecided   AuditEvent = "action_decided"

	// Registry events
	EventEntityRegistered   AuditEvent = "entity_registered"
	EventDocumentRegistered AuditEvent = "document_registered"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventApplicationSubmitted: CategoryCompliance,
	EventApplicationApproved:  CategoryCompliance,
	EventApplicationDenied:    CategoryCompliance,
	EventLicenseIssued:        CategoryCompliance,
	EventRenewalDecided:       CategoryCompliance,
	EventEntityRegistered:     CategoryCompliance,

	EventLicenseStatusChanged: CategorySecurity,
	EventActionDecided:        CategorySecurity,

	EventApplicationAdvanced:  CategoryOperations,
	EventRenewalInitiated:     CategoryOperations,
	EventActionCreated:        CategoryOperations,
	EventActionSubmitted:      CategoryOperations,
	EventDocumentRegistered:   CategoryOperations,
}

// Category returns the event's category, defaulting to operations for
// unrecognized actions so nothing is silently dropped.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
