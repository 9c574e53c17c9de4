package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	// Examples: profile updates, transfer denials, attestor slashing.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and
	// forensics: rejected signatures, untrusted submitters, role misuse.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	// Examples: submissions accepted, rounds finalized, valuations read.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the entity the event is about: a policy id for oracle
	// events, an account id for compliance events.
	Subject string
	Action  string
	// Actor is who caused the event: an attestor handle, a compliance
	// officer, or the ledger identity requesting an authorization.
	Actor string
	// Decision and Reason capture gate outcomes ("denied"/"stale_valuation").
	Decision string
	Reason   string
	// Value carries the finalized valuation for round events, or the
	// transfer amount for gate events. Minor units.
	Value int64
	// VoteCount is populated on round finalization events.
	VoteCount int
	// EvidenceRef points at the off-chain evidence backing a slashing event.
	EvidenceRef string
	// RequestID is the correlation id from the HTTP request context.
	RequestID string
}

// AuditEvent names every action this system emits. The set is closed so the
// disclosure tooling downstream can route on exact names.
type AuditEvent string

const (
	// Oracle events
	EventAttestationSubmitted AuditEvent = "attestation_submitted"
	EventSubmissionRejected   AuditEvent = "submission_rejected"
	EventRoundFinalized       AuditEvent = "round_finalized"
	EventRoundExpired         AuditEvent = "round_expired"
	EventValuationAnomaly     AuditEvent = "valuation_anomaly"

	// Attestor lifecycle events
	EventAttestorRegistered  AuditEvent = "attestor_registered"
	EventAttestorDeactivated AuditEvent = "attestor_deactivated"
	EventAttestorSlashed     AuditEvent = "attestor_slashed"
	EventStakeIncreased      AuditEvent = "stake_increased"

	// Compliance events
	EventProfileUpdated     AuditEvent = "profile_updated"
	EventTransferAuthorized AuditEvent = "transfer_authorized"
	EventTransferDenied     AuditEvent = "transfer_denied"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - legal significance, long retention
	EventAttestorSlashed:    CategoryCompliance,
	EventProfileUpdated:     CategoryCompliance,
	EventTransferDenied:     CategoryCompliance,
	EventValuationAnomaly:   CategoryCompliance,

	// Security events - feed into SIEM and alerting
	EventSubmissionRejected:  CategorySecurity,
	EventAttestorDeactivated: CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventAttestationSubmitted: CategoryOperations,
	EventRoundFinalized:       CategoryOperations,
	EventRoundExpired:         CategoryOperations,
	EventAttestorRegistered:   CategoryOperations,
	EventStakeIncreased:       CategoryOperations,
	EventTransferAuthorized:   CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
