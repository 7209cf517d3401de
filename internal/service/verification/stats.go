package verification

import (
	"context"
	"fmt"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// Overview returns the request count per status for the admin dashboard.
func (s *Service) Overview(ctx context.Context) (map[domain.VerificationStatus]int, error) {
	counts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	return counts, nil
}

// SLAStats summarizes SLA health across the review queue.
type SLAStats struct {
	InFlight    int
	Overdue     int
	OldestHours float64
}

// SLAStats evaluates every in-flight request against the configured window.
func (s *Service) SLAStats(ctx context.Context) (SLAStats, error) {
	inFlight, err := s.requests.ListInFlight(ctx)
	if err != nil {
		return SLAStats{}, fmt.Errorf("list in-flight requests: %w", err)
	}
	return s.sla.Stats(inFlight, s.cfg.SLAWindowHours), nil
}

// Stats aggregates SLA health over a set of in-flight requests.
func (m *SLAMonitor) Stats(inFlight []domain.VerificationRequest, windowHours int) SLAStats {
	stats := SLAStats{InFlight: len(inFlight)}
	for i := range inFlight {
		res := m.IsOverdue(&inFlight[i], windowHours)
		if res.Overdue {
			stats.Overdue++
		}
		if res.AgeHours > stats.OldestHours {
			stats.OldestHours = res.AgeHours
		}
	}
	return stats
}
