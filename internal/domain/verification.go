package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationRequest is the single active verification-subscription record
// for a brand. Terminal requests (REJECTED, EXPIRED) are kept as history and
// a fresh request may be opened; at most one non-terminal request exists per
// brand at any time (enforced by a partial unique index).
type VerificationRequest struct {
	ID              uuid.UUID
	BrandID         uuid.UUID
	Status          VerificationStatus
	PlanCode        string
	Documents       map[DocumentType]DocumentRecord
	SubmittedAt     time.Time
	PaidAt          *time.Time
	ApprovedAt      *time.Time
	ExpiresAt       *time.Time
	RejectionReason *string

	// Version is the optimistic-lock counter. Every status write must carry
	// the version it read; a stale write fails with ErrConcurrentModification.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentRecord is one uploaded verification document. Re-uploading the
// same type replaces the previous record.
type DocumentRecord struct {
	Type            DocumentType
	Status          DocumentStatus
	FileRef         string
	RejectionReason *string
	UploadedAt      time.Time
}

// StatusUpdateParams carries a version-guarded status write. ExpectedVersion
// must match the version the caller read; the repo refuses stale writes with
// ErrConcurrentModification.
type StatusUpdateParams struct {
	RequestID       uuid.UUID
	ExpectedVersion int64
	Status          VerificationStatus
	PlanCode        *string
	PaidAt          *time.Time
	ApprovedAt      *time.Time
	ExpiresAt       *time.Time
	RejectionReason *string
}

// allowedTransitions is the verification state machine. Absence means the
// transition is illegal regardless of guards.
var allowedTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationNotStarted:       {VerificationPendingDocuments},
	VerificationPendingDocuments: {VerificationPaidPending},
	VerificationPaidPending:      {VerificationUnderReview},
	VerificationUnderReview:      {VerificationApproved, VerificationRejected, VerificationMoreInfo},
	VerificationMoreInfo:         {VerificationPendingDocuments},
	VerificationApproved:         {VerificationExpired},
}

// CanTransition reports whether the state machine permits from -> to.
// Guards (documents, fraud) are checked separately by the lifecycle service.
func CanTransition(from, to VerificationStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStates returns the states reachable from the given one.
func NextStates(from VerificationStatus) []VerificationStatus {
	return allowedTransitions[from]
}

// HasUploadedDocument reports whether at least one document exists,
// regardless of its review status.
func (r *VerificationRequest) HasUploadedDocument() bool {
	return len(r.Documents) > 0
}

// HasAllRequired reports whether every required type has an uploaded
// document (pending or better).
func (r *VerificationRequest) HasAllRequired(required []DocumentType) bool {
	for _, t := range required {
		if _, ok := r.Documents[t]; !ok {
			return false
		}
	}
	return true
}

// AllRequiredApproved reports whether every required document exists and is
// approved. Gate for UNDER_REVIEW -> APPROVED.
func (r *VerificationRequest) AllRequiredApproved(required []DocumentType) bool {
	for _, t := range required {
		doc, ok := r.Documents[t]
		if !ok || doc.Status != DocumentApproved {
			return false
		}
	}
	return true
}

// IsExpired reports whether an APPROVED request has passed its expiry.
func (r *VerificationRequest) IsExpired(now time.Time) bool {
	return r.Status == VerificationApproved && r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// SLAClockRunning reports whether the request is in a state where the
// review SLA clock is ticking.
func (r *VerificationRequest) SLAClockRunning() bool {
	return r.Status == VerificationPaidPending || r.Status == VerificationUnderReview
}

// SLAStart returns the instant the SLA clock starts from: submittedAt, or
// paidAt when present and later.
func (r *VerificationRequest) SLAStart() time.Time {
	if r.PaidAt != nil && r.PaidAt.After(r.SubmittedAt) {
		return *r.PaidAt
	}
	return r.SubmittedAt
}
