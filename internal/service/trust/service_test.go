package trust

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvehub/trustengine-backend/internal/config"
	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockRatingRepo struct {
	GetSamplesFunc        func(ctx context.Context, brandID uuid.UUID) ([]domain.RatingSample, error)
	GetActivitySignalFunc func(ctx context.Context, brandID uuid.UUID, windowDays int) (domain.ActivitySignal, error)
}

func (m *mockRatingRepo) GetSamples(ctx context.Context, brandID uuid.UUID) ([]domain.RatingSample, error) {
	if m.GetSamplesFunc != nil {
		return m.GetSamplesFunc(ctx, brandID)
	}
	return nil, nil
}

func (m *mockRatingRepo) GetActivitySignal(ctx context.Context, brandID uuid.UUID, windowDays int) (domain.ActivitySignal, error) {
	if m.GetActivitySignalFunc != nil {
		return m.GetActivitySignalFunc(ctx, brandID, windowDays)
	}
	return domain.ActivitySignal{ResponseRatio: 1, WindowDays: windowDays}, nil
}

type mockVerificationStatus struct {
	GetStatusFunc func(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error)
}

func (m *mockVerificationStatus) GetStatus(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx, brandID)
	}
	return &domain.VerificationRequest{BrandID: brandID, Status: domain.VerificationNotStarted}, nil
}

func newTestService() (*Service, *mockRatingRepo, *mockVerificationStatus) {
	ratings := &mockRatingRepo{}
	verification := &mockVerificationStatus{}
	svc := NewService(slog.Default(), ratings, verification, config.TrustConfig{
		PriorMean:          3.5,
		PriorWeight:        5.0,
		ActivityWindowDays: 30,
	})
	return svc, ratings, verification
}

// ===========================================================================
// GetTrustScore
// ===========================================================================

func TestService_GetTrustScore_NewBrand(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()

	result, err := svc.GetTrustScore(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 3.5, result.Score)
	assert.Equal(t, 0, result.SampleCount)
	// authenticity 100, activity 100, verification 60 -> composite 86.67
	assert.Equal(t, domain.RiskLow, result.RiskLevel)
}

func TestService_GetTrustScore_VerifiedPremiumBrand(t *testing.T) {
	t.Parallel()
	svc, ratings, verification := newTestService()
	brandID := uuid.New()

	ratings.GetSamplesFunc = func(_ context.Context, id uuid.UUID) ([]domain.RatingSample, error) {
		assert.Equal(t, brandID, id)
		return []domain.RatingSample{
			{Stars: 5, HasComment: true},
			{Stars: 4, HasComment: true},
		}, nil
	}
	verification.GetStatusFunc = func(_ context.Context, id uuid.UUID) (*domain.VerificationRequest, error) {
		return &domain.VerificationRequest{
			BrandID:  id,
			Status:   domain.VerificationApproved,
			PlanCode: "verified_premium",
		}, nil
	}

	result, err := svc.GetTrustScore(context.Background(), brandID)
	require.NoError(t, err)

	// (5*3.5 + 9) / 7
	assert.InDelta(t, 26.5/7, result.Score, 1e-9)
	assert.Equal(t, 2, result.SampleCount)
	assert.Equal(t, 100.0, result.Factors.Verification)
	assert.Equal(t, 100.0, result.Factors.Authenticity)
	assert.Equal(t, domain.RiskLow, result.RiskLevel)
}

func TestService_GetTrustScore_PoorSignalsAreCritical(t *testing.T) {
	t.Parallel()
	svc, ratings, _ := newTestService()

	ratings.GetSamplesFunc = func(_ context.Context, _ uuid.UUID) ([]domain.RatingSample, error) {
		return []domain.RatingSample{{Stars: 1}, {Stars: 1}, {Stars: 2}}, nil
	}
	ratings.GetActivitySignalFunc = func(_ context.Context, _ uuid.UUID, windowDays int) (domain.ActivitySignal, error) {
		return domain.ActivitySignal{ResponseRatio: 0, WindowDays: windowDays}, nil
	}

	result, err := svc.GetTrustScore(context.Background(), uuid.New())
	require.NoError(t, err)

	// authenticity 0, activity 0, verification 60 -> composite 20
	assert.Equal(t, domain.RiskCritical, result.RiskLevel)
}

func TestService_GetTrustScore_RepoError(t *testing.T) {
	t.Parallel()
	svc, ratings, _ := newTestService()

	repoErr := errors.New("connection reset")
	ratings.GetSamplesFunc = func(_ context.Context, _ uuid.UUID) ([]domain.RatingSample, error) {
		return nil, repoErr
	}

	_, err := svc.GetTrustScore(context.Background(), uuid.New())
	require.ErrorIs(t, err, repoErr)
}

func TestService_GetTrustScore_VerificationError(t *testing.T) {
	t.Parallel()
	svc, _, verification := newTestService()

	statusErr := errors.New("status unavailable")
	verification.GetStatusFunc = func(_ context.Context, _ uuid.UUID) (*domain.VerificationRequest, error) {
		return nil, statusErr
	}

	_, err := svc.GetTrustScore(context.Background(), uuid.New())
	require.ErrorIs(t, err, statusErr)
}
