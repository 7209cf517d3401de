package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

type rejectionRepo interface {
	GetRejectionHistory(ctx context.Context, brandID uuid.UUID) ([]domain.RejectionEvent, error)
	ListBrandsWithRejections(ctx context.Context, since time.Time) (map[uuid.UUID][]domain.RejectionEvent, error)
}

// Service exposes fraud signals to the lifecycle guard and the admin
// dashboard.
type Service struct {
	rejections rejectionRepo
	detector   *Detector
	log        *slog.Logger
}

// NewService creates a new Fraud service.
func NewService(log *slog.Logger, rejections rejectionRepo, detector *Detector) *Service {
	return &Service{
		rejections: rejections,
		detector:   detector,
		log:        log,
	}
}

// Signal recomputes the fraud signal for one brand from current history.
func (s *Service) Signal(ctx context.Context, brandID uuid.UUID) (domain.FraudSignal, error) {
	history, err := s.rejections.GetRejectionHistory(ctx, brandID)
	if err != nil {
		return domain.FraudSignal{}, fmt.Errorf("get rejection history: %w", err)
	}
	return s.detector.Evaluate(brandID, history), nil
}

// ListSuspicious returns the signal for every brand currently at or above
// the rejection threshold, for the admin fraud dashboard.
func (s *Service) ListSuspicious(ctx context.Context) ([]domain.FraudSignal, error) {
	since := s.detector.clock.Now().Add(-s.detector.window)
	byBrand, err := s.rejections.ListBrandsWithRejections(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list brands with rejections: %w", err)
	}

	var signals []domain.FraudSignal
	for brandID, history := range byBrand {
		sig := s.detector.Evaluate(brandID, history)
		if sig.Suspicious {
			signals = append(signals, sig)
		}
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].RejectionCount > signals[j].RejectionCount
	})
	return signals, nil
}
