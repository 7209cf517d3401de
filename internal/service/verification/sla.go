package verification

import (
	"github.com/jonboulle/clockwork"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// SLAResult reports whether a request has blown its review window.
type SLAResult struct {
	Overdue  bool
	AgeHours float64
}

// SLAMonitor measures how long a request has been waiting for review.
// Pure over the injected clock; safe for unlimited concurrent use.
type SLAMonitor struct {
	clock clockwork.Clock
}

// NewSLAMonitor creates a monitor bound to the given clock.
func NewSLAMonitor(clock clockwork.Clock) *SLAMonitor {
	return &SLAMonitor{clock: clock}
}

// IsOverdue evaluates the SLA clock for a request. Only PAID_PENDING and
// UNDER_REVIEW have a running clock; any other status returns zero-value —
// a terminal or not-yet-paid request has no SLA, which is not an error.
// Age counts from submittedAt, or paidAt when present and later.
func (m *SLAMonitor) IsOverdue(req *domain.VerificationRequest, windowHours int) SLAResult {
	if !req.SLAClockRunning() {
		return SLAResult{}
	}

	age := m.clock.Now().Sub(req.SLAStart()).Hours()
	return SLAResult{
		Overdue:  age > float64(windowHours),
		AgeHours: age,
	}
}
