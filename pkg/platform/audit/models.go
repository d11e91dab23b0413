package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers verification outcomes that must be retained
	// and produced on request.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the document service to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Events never carry
// identity field values; SubjectIDHash is the salted identity hash.
type Event struct {
	Category     EventCategory
	Timestamp    time.Time
	Subject      string // verification ID, or the document kind for parse events
	Action       string
	DocumentKind string
	Decision     string
	Reason       string
	RequestID    string
	// SubjectIDHash links events for the same identity without storing PII.
	SubjectIDHash string
}

type AuditEvent string

const (
	EventDocumentParsed      AuditEvent = "document_parsed"
	EventDocumentParseFailed AuditEvent = "document_parse_failed"
	EventDocumentVerified    AuditEvent = "document_verified"
	EventDocumentRejected    AuditEvent = "document_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDocumentVerified:    CategoryCompliance,
	EventDocumentRejected:    CategoryCompliance,
	EventDocumentParsed:      CategoryOperations,
	EventDocumentParseFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
