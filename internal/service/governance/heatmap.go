package governance

import (
	"context"
	"fmt"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// Heatmap buckets every rated brand by its current risk level, for the admin
// governance dashboard.
func (s *Service) Heatmap(ctx context.Context) (map[domain.RiskLevel]int, error) {
	ids, err := s.brands.ListRatedBrandIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rated brands: %w", err)
	}

	heatmap := map[domain.RiskLevel]int{
		domain.RiskLow:      0,
		domain.RiskMedium:   0,
		domain.RiskHigh:     0,
		domain.RiskCritical: 0,
	}
	for _, id := range ids {
		result, err := s.trust.GetTrustScore(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("trust score for %s: %w", id, err)
		}
		heatmap[result.RiskLevel]++
	}
	return heatmap, nil
}
