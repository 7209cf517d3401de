// Package fraud derives a suspicion signal from a brand's history of
// rejected verification requests.
package fraud

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// Detector evaluates rejection history against a rolling window. It holds no
// state beyond configuration; Evaluate is pure given a fixed clock.
type Detector struct {
	threshold int
	window    time.Duration
	clock     clockwork.Clock
}

// NewDetector creates a Detector. threshold is the number of in-window
// rejections at which a brand becomes suspicious; windowDays bounds how long
// a rejection counts — stale rejections must not permanently brand a company
// as fraudulent.
func NewDetector(threshold, windowDays int, clock clockwork.Clock) *Detector {
	return &Detector{
		threshold: threshold,
		window:    time.Duration(windowDays) * 24 * time.Hour,
		clock:     clock,
	}
}

// Evaluate recomputes the fraud signal from the full rejection history.
// The signal gates the approval guard, so it is always recomputed at
// decision time and never cached.
func (d *Detector) Evaluate(brandID uuid.UUID, history []domain.RejectionEvent) domain.FraudSignal {
	cutoff := d.clock.Now().Add(-d.window)

	count := 0
	for _, ev := range history {
		if ev.RejectedAt.After(cutoff) {
			count++
		}
	}

	return domain.FraudSignal{
		BrandID:        brandID,
		RejectionCount: count,
		Suspicious:     count >= d.threshold,
	}
}
