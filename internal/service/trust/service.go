package trust

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/resolvehub/trustengine-backend/internal/config"
	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type ratingRepo interface {
	GetSamples(ctx context.Context, brandID uuid.UUID) ([]domain.RatingSample, error)
	GetActivitySignal(ctx context.Context, brandID uuid.UUID, windowDays int) (domain.ActivitySignal, error)
}

type verificationStatus interface {
	GetStatus(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service assembles the public trust score for a brand. It is read-only and
// side-effect free, safe for unlimited concurrent access.
type Service struct {
	ratings      ratingRepo
	verification verificationStatus
	log          *slog.Logger
	cfg          config.TrustConfig
}

// NewService creates a new Trust service.
func NewService(log *slog.Logger, ratings ratingRepo, verification verificationStatus, cfg config.TrustConfig) *Service {
	return &Service{
		ratings:      ratings,
		verification: verification,
		log:          log,
		cfg:          cfg,
	}
}

// GetTrustScore recomputes the trust score and factor breakdown on demand.
// The result is derived, never a source of truth.
func (s *Service) GetTrustScore(ctx context.Context, brandID uuid.UUID) (domain.TrustScoreResult, error) {
	samples, err := s.ratings.GetSamples(ctx, brandID)
	if err != nil {
		return domain.TrustScoreResult{}, fmt.Errorf("get rating samples: %w", err)
	}

	result, err := Compute(samples, s.cfg.PriorMean, s.cfg.PriorWeight)
	if err != nil {
		return domain.TrustScoreResult{}, fmt.Errorf("compute trust score: %w", err)
	}

	activity, err := s.ratings.GetActivitySignal(ctx, brandID, s.cfg.ActivityWindowDays)
	if err != nil {
		return domain.TrustScoreResult{}, fmt.Errorf("get activity signal: %w", err)
	}

	// GetStatus applies lazy expiry, so the verification factor reflects the
	// current badge state rather than a stale APPROVED row.
	req, err := s.verification.GetStatus(ctx, brandID)
	if err != nil {
		return domain.TrustScoreResult{}, fmt.Errorf("get verification status: %w", err)
	}

	result.Factors = ComputeFactors(FactorInputs{
		Samples:            samples,
		Activity:           activity,
		VerificationStatus: req.Status,
		PlanCode:           req.PlanCode,
	})
	result.RiskLevel = domain.RiskLevelFor(result.Factors.Composite())

	s.log.DebugContext(ctx, "trust score computed",
		slog.String("brand_id", brandID.String()),
		slog.Float64("score", result.Score),
		slog.Int("samples", result.SampleCount),
	)

	return result, nil
}
