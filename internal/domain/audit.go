package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction names the kind of event recorded in the audit trail.
type AuditAction string

const (
	AuditVerificationCreated  AuditAction = "VERIFICATION_CREATED"
	AuditDocumentUploaded     AuditAction = "DOCUMENT_UPLOADED"
	AuditDocumentReviewed     AuditAction = "DOCUMENT_REVIEWED"
	AuditPaymentConfirmed     AuditAction = "PAYMENT_CONFIRMED"
	AuditDuplicatePayment     AuditAction = "DUPLICATE_PAYMENT_IGNORED"
	AuditReviewStarted        AuditAction = "REVIEW_STARTED"
	AuditVerificationApproved AuditAction = "VERIFICATION_APPROVED"
	AuditVerificationRejected AuditAction = "VERIFICATION_REJECTED"
	AuditMoreInfoRequested    AuditAction = "MORE_INFO_REQUESTED"
	AuditVerificationExpired  AuditAction = "VERIFICATION_EXPIRED"
	AuditTransitionBlocked    AuditAction = "TRANSITION_BLOCKED"
	AuditEnforcementCreated   AuditAction = "ENFORCEMENT_CREATED"
	AuditEnforcementLapsed    AuditAction = "ENFORCEMENT_LAPSED"
)

func (a AuditAction) String() string { return string(a) }

// SystemActorID attributes audit entries produced by the engine itself
// (lazy expiry, governance decisions) rather than by a human actor.
var SystemActorID = uuid.Nil

// AuditEntry is one append-only record of a state change or a blocked
// guarded attempt. Every non-idempotent mutation to a VerificationRequest or
// EnforcementAction produces exactly one entry.
type AuditEntry struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	Action     AuditAction
	TargetType TargetType
	TargetID   uuid.UUID
	Reason     *string
	Metadata   map[string]any
	CreatedAt  time.Time
}
