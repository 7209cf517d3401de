package verification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

func slaRequest(status domain.VerificationStatus, submitted time.Time, paid *time.Time) *domain.VerificationRequest {
	return &domain.VerificationRequest{
		ID:          uuid.New(),
		BrandID:     uuid.New(),
		Status:      status,
		SubmittedAt: submitted,
		PaidAt:      paid,
	}
}

func TestSLAMonitor_IsOverdue_Boundary(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(testNow)
	m := NewSLAMonitor(clock)

	tests := []struct {
		name    string
		age     time.Duration
		overdue bool
	}{
		{"well inside", 10 * time.Hour, false},
		{"just inside", 47 * time.Hour, false},
		{"exactly at window", 48 * time.Hour, false},
		{"just past", 49 * time.Hour, true},
		{"long past", 200 * time.Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := slaRequest(domain.VerificationUnderReview, testNow.Add(-tt.age), nil)
			res := m.IsOverdue(req, 48)
			assert.Equal(t, tt.overdue, res.Overdue)
			assert.InDelta(t, tt.age.Hours(), res.AgeHours, 1e-9)
		})
	}
}

// The SLA clock only runs while the request waits on the platform.
func TestSLAMonitor_IsOverdue_OnlyInFlightStates(t *testing.T) {
	t.Parallel()

	m := NewSLAMonitor(clockwork.NewFakeClockAt(testNow))
	old := testNow.Add(-100 * time.Hour)

	running := map[domain.VerificationStatus]bool{
		domain.VerificationPaidPending: true,
		domain.VerificationUnderReview: true,
	}

	for _, status := range []domain.VerificationStatus{
		domain.VerificationPendingDocuments,
		domain.VerificationPaidPending,
		domain.VerificationUnderReview,
		domain.VerificationApproved,
		domain.VerificationRejected,
		domain.VerificationMoreInfo,
		domain.VerificationExpired,
	} {
		res := m.IsOverdue(slaRequest(status, old, nil), 48)
		if running[status] {
			assert.True(t, res.Overdue, "status %s should be overdue", status)
		} else {
			assert.Zero(t, res, "status %s has no SLA", status)
		}
	}
}

// Age counts from payment when it happened after submission: the brand's
// own document dawdling is not the reviewer's delay.
func TestSLAMonitor_IsOverdue_CountsFromPayment(t *testing.T) {
	t.Parallel()

	m := NewSLAMonitor(clockwork.NewFakeClockAt(testNow))
	submitted := testNow.Add(-100 * time.Hour)
	paid := testNow.Add(-10 * time.Hour)

	res := m.IsOverdue(slaRequest(domain.VerificationUnderReview, submitted, &paid), 48)

	assert.False(t, res.Overdue)
	assert.InDelta(t, 10, res.AgeHours, 1e-9)
}

func TestSLAMonitor_Stats(t *testing.T) {
	t.Parallel()

	m := NewSLAMonitor(clockwork.NewFakeClockAt(testNow))
	inFlight := []domain.VerificationRequest{
		*slaRequest(domain.VerificationUnderReview, testNow.Add(-72*time.Hour), nil),
		*slaRequest(domain.VerificationPaidPending, testNow.Add(-50*time.Hour), nil),
		*slaRequest(domain.VerificationUnderReview, testNow.Add(-5*time.Hour), nil),
	}

	stats := m.Stats(inFlight, 48)

	assert.Equal(t, 3, stats.InFlight)
	assert.Equal(t, 2, stats.Overdue)
	assert.InDelta(t, 72, stats.OldestHours, 1e-9)
}

// ===========================================================================
// Service-level stats
// ===========================================================================

func TestService_SLAStats(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService(t, defaultCfg())
	brandID := uuid.New()
	req := seedRequest(deps, brandID, domain.VerificationUnderReview)
	req.SubmittedAt = testNow.Add(-60 * time.Hour)

	stats, err := svc.SLAStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.InFlight)
	assert.Equal(t, 1, stats.Overdue)
	assert.InDelta(t, 60, stats.OldestHours, 1e-9)
}

func TestService_Overview(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService(t, defaultCfg())
	seedRequest(deps, uuid.New(), domain.VerificationPaidPending)

	counts, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.VerificationPaidPending])
}
