package domain

import (
	"time"

	"github.com/google/uuid"
)

// RejectionEvent records one rejected verification request for a brand.
// The archive of REJECTED requests is the source of this history.
type RejectionEvent struct {
	RequestID  uuid.UUID
	BrandID    uuid.UUID
	Reason     string
	RejectedAt time.Time
}

// FraudSignal is a derived view over a brand's rejection history. It is
// recomputed on every evaluation and never persisted, since it gates the
// approval guard and must reflect current history.
type FraudSignal struct {
	BrandID        uuid.UUID
	RejectionCount int
	Suspicious     bool
}
