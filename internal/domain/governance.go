package domain

import (
	"time"

	"github.com/google/uuid"
)

// EnforcementAction is an append-only governance decision against a brand.
// Once created it is immutable except for natural lapse (ResolvedAt set when
// ExpiresAt passes, applied lazily on read). An active action governs
// whether the brand's verified badge and complaint-response capability work.
type EnforcementAction struct {
	ID         uuid.UUID
	BrandID    uuid.UUID
	ActionType EnforcementType
	Reason     string
	CreatedAt  time.Time
	ExpiresAt  *time.Time
	ResolvedAt *time.Time
}

// Active reports whether the action is still in force at the given time.
func (a *EnforcementAction) Active(now time.Time) bool {
	if a.ResolvedAt != nil {
		return false
	}
	if a.ExpiresAt != nil && now.After(*a.ExpiresAt) {
		return false
	}
	return true
}

// EscalationCase is created by the complaint subsystem when a complaint
// crosses a severity threshold. The engine consumes it as a signal; it does
// not own the lifecycle.
type EscalationCase struct {
	ID          uuid.UUID
	ComplaintID uuid.UUID
	BrandID     uuid.UUID
	EscalatedBy string
	Reason      string
	Severe      bool
	Status      EscalationStatus
	CreatedAt   time.Time
}
