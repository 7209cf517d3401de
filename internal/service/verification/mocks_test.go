package verification

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/resolvehub/trustengine-backend/internal/config"
	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// testNow is the fixed instant the fake clock starts at.
var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// ===========================================================================
// In-memory fakes
//
// The lifecycle methods chain several repo calls per operation, so a
// stateful fake honoring the version CAS contract beats per-test func
// stubs. Individual calls can still be overridden via the func fields.
// ===========================================================================

type fakeRequestRepo struct {
	req      *domain.VerificationRequest
	payments map[string]bool

	UpdateStatusFunc func(ctx context.Context, params domain.StatusUpdateParams) (*domain.VerificationRequest, error)
	GetCurrentFunc   func(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error)
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{payments: map[string]bool{}}
}

func cloneRequest(req *domain.VerificationRequest) *domain.VerificationRequest {
	if req == nil {
		return nil
	}
	clone := *req
	clone.Documents = maps.Clone(req.Documents)
	return &clone
}

func (f *fakeRequestRepo) GetActive(_ context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error) {
	if f.req == nil || f.req.BrandID != brandID || f.req.Status.IsTerminal() {
		return nil, domain.ErrNotFound
	}
	return cloneRequest(f.req), nil
}

func (f *fakeRequestRepo) GetCurrent(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error) {
	if f.GetCurrentFunc != nil {
		return f.GetCurrentFunc(ctx, brandID)
	}
	if f.req == nil || f.req.BrandID != brandID {
		return nil, domain.ErrNotFound
	}
	return cloneRequest(f.req), nil
}

func (f *fakeRequestRepo) Create(_ context.Context, req *domain.VerificationRequest) (*domain.VerificationRequest, error) {
	if f.req != nil && !f.req.Status.IsTerminal() && f.req.BrandID == req.BrandID {
		return nil, domain.ErrAlreadyExists
	}
	stored := cloneRequest(req)
	stored.Version = 1
	stored.CreatedAt = req.SubmittedAt
	stored.UpdatedAt = req.SubmittedAt
	f.req = stored
	return cloneRequest(stored), nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, params domain.StatusUpdateParams) (*domain.VerificationRequest, error) {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, params)
	}
	return f.applyUpdate(params)
}

func (f *fakeRequestRepo) applyUpdate(params domain.StatusUpdateParams) (*domain.VerificationRequest, error) {
	if f.req == nil || f.req.ID != params.RequestID {
		return nil, domain.ErrNotFound
	}
	if f.req.Version != params.ExpectedVersion {
		return nil, fmt.Errorf("verification_request %s: %w", params.RequestID, domain.ErrConcurrentModification)
	}

	f.req.Status = params.Status
	f.req.Version++
	if params.PlanCode != nil {
		f.req.PlanCode = *params.PlanCode
	}
	if params.PaidAt != nil {
		f.req.PaidAt = params.PaidAt
	}
	if params.ApprovedAt != nil {
		f.req.ApprovedAt = params.ApprovedAt
	}
	if params.ExpiresAt != nil {
		f.req.ExpiresAt = params.ExpiresAt
	}
	if params.RejectionReason != nil {
		f.req.RejectionReason = params.RejectionReason
	}
	return cloneRequest(f.req), nil
}

func (f *fakeRequestRepo) UpsertDocument(_ context.Context, requestID uuid.UUID, doc domain.DocumentRecord) error {
	if f.req == nil || f.req.ID != requestID {
		return domain.ErrNotFound
	}
	f.req.Documents[doc.Type] = doc
	return nil
}

func (f *fakeRequestRepo) SetDocumentStatus(_ context.Context, requestID uuid.UUID, docType domain.DocumentType, status domain.DocumentStatus, reason *string) error {
	if f.req == nil || f.req.ID != requestID {
		return domain.ErrNotFound
	}
	doc, ok := f.req.Documents[docType]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	doc.RejectionReason = reason
	f.req.Documents[docType] = doc
	return nil
}

func (f *fakeRequestRepo) ClearDocuments(_ context.Context, requestID uuid.UUID, types []domain.DocumentType) error {
	if f.req == nil || f.req.ID != requestID {
		return domain.ErrNotFound
	}
	for _, t := range types {
		delete(f.req.Documents, t)
	}
	return nil
}

func (f *fakeRequestRepo) RecordPayment(_ context.Context, _ uuid.UUID, providerRef, _ string, _ time.Time) (bool, error) {
	if f.payments[providerRef] {
		return false, nil
	}
	f.payments[providerRef] = true
	return true, nil
}

func (f *fakeRequestRepo) CountByStatus(_ context.Context) (map[domain.VerificationStatus]int, error) {
	counts := map[domain.VerificationStatus]int{}
	if f.req != nil {
		counts[f.req.Status]++
	}
	return counts, nil
}

func (f *fakeRequestRepo) ListInFlight(_ context.Context) ([]domain.VerificationRequest, error) {
	if f.req != nil && f.req.SLAClockRunning() {
		return []domain.VerificationRequest{*cloneRequest(f.req)}, nil
	}
	return nil, nil
}

type fakeFraud struct {
	signal domain.FraudSignal
	err    error
}

func (f *fakeFraud) Signal(_ context.Context, brandID uuid.UUID) (domain.FraudSignal, error) {
	if f.err != nil {
		return domain.FraudSignal{}, f.err
	}
	sig := f.signal
	sig.BrandID = brandID
	return sig, nil
}

type fakeAudit struct {
	entries []domain.AuditEntry
	err     error
}

func (f *fakeAudit) Log(_ context.Context, entry domain.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) count(action domain.AuditAction) int {
	n := 0
	for _, e := range f.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

func (f *fakeAudit) last() domain.AuditEntry {
	return f.entries[len(f.entries)-1]
}

// fakeTx mimics transactional rollback over the in-memory fakes: on error
// the repo and audit state revert to their pre-transaction snapshot. Without
// this the conflict-retry paths would observe half-applied writes that a
// real rolled-back transaction never leaks.
type fakeTx struct {
	repo  *fakeRequestRepo
	audit *fakeAudit
}

func (t *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	reqSnap := cloneRequest(t.repo.req)
	paySnap := maps.Clone(t.repo.payments)
	auditLen := len(t.audit.entries)

	if err := fn(ctx); err != nil {
		t.repo.req = reqSnap
		t.repo.payments = paySnap
		t.audit.entries = t.audit.entries[:auditLen]
		return err
	}
	return nil
}

// ===========================================================================
// Helpers
// ===========================================================================

type testDeps struct {
	requests *fakeRequestRepo
	fraud    *fakeFraud
	audit    *fakeAudit
	clock    *clockwork.FakeClock
}

func defaultCfg() config.VerificationConfig {
	return config.VerificationConfig{
		SLAWindowHours:    48,
		ExpiryDays:        365,
		RequiredDocuments: []string{"business_registration", "director_id", "proof_of_address"},
	}
}

func newTestService(t *testing.T, cfg config.VerificationConfig) (*Service, *testDeps) {
	t.Helper()

	deps := &testDeps{
		requests: newFakeRequestRepo(),
		fraud:    &fakeFraud{},
		audit:    &fakeAudit{},
		clock:    clockwork.NewFakeClockAt(testNow),
	}
	svc, err := NewService(
		slog.Default(),
		deps.requests,
		deps.fraud,
		deps.audit,
		&fakeTx{repo: deps.requests, audit: deps.audit},
		deps.clock,
		cfg,
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, deps
}

// seedRequest plants a request in the fake repo in the given status.
func seedRequest(deps *testDeps, brandID uuid.UUID, status domain.VerificationStatus) *domain.VerificationRequest {
	req := &domain.VerificationRequest{
		ID:          uuid.New(),
		BrandID:     brandID,
		Status:      status,
		Documents:   map[domain.DocumentType]domain.DocumentRecord{},
		SubmittedAt: testNow.Add(-time.Hour),
		Version:     1,
		CreatedAt:   testNow.Add(-time.Hour),
		UpdatedAt:   testNow.Add(-time.Hour),
	}
	deps.requests.req = req
	return req
}

// seedAllDocs attaches every required document in the given review status.
func seedAllDocs(req *domain.VerificationRequest, status domain.DocumentStatus) {
	for _, t := range []domain.DocumentType{
		domain.DocumentBusinessRegistration,
		domain.DocumentDirectorID,
		domain.DocumentProofOfAddress,
	} {
		req.Documents[t] = domain.DocumentRecord{
			Type:       t,
			Status:     status,
			FileRef:    "s3://docs/" + string(t),
			UploadedAt: req.SubmittedAt,
		}
	}
}

func ptrString(s string) *string { return &s }
