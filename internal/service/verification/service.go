// Package verification owns the identity-verification lifecycle for brands:
// the document/payment/review state machine, its guards, SLA monitoring,
// and lazy expiry of approved verifications.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/resolvehub/trustengine-backend/internal/config"
	"github.com/resolvehub/trustengine-backend/internal/domain"
	"github.com/resolvehub/trustengine-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type requestRepo interface {
	// GetActive returns the brand's non-terminal request, ErrNotFound if none.
	GetActive(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error)
	// GetCurrent returns the brand's most recent request regardless of state.
	GetCurrent(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error)
	Create(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationRequest, error)
	UpdateStatus(ctx context.Context, params domain.StatusUpdateParams) (*domain.VerificationRequest, error)
	UpsertDocument(ctx context.Context, requestID uuid.UUID, doc domain.DocumentRecord) error
	SetDocumentStatus(ctx context.Context, requestID uuid.UUID, docType domain.DocumentType, status domain.DocumentStatus, reason *string) error
	ClearDocuments(ctx context.Context, requestID uuid.UUID, types []domain.DocumentType) error
	// RecordPayment inserts a payment row keyed by providerRef. Returns
	// false when the ref was already recorded (duplicate webhook).
	RecordPayment(ctx context.Context, requestID uuid.UUID, providerRef, planCode string, paidAt time.Time) (bool, error)
	CountByStatus(ctx context.Context) (map[domain.VerificationStatus]int, error)
	ListInFlight(ctx context.Context) ([]domain.VerificationRequest, error)
}

type fraudChecker interface {
	Signal(ctx context.Context, brandID uuid.UUID) (domain.FraudSignal, error)
}

type auditLogger interface {
	Log(ctx context.Context, entry domain.AuditEntry) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the verification lifecycle state machine.
type Service struct {
	requests requestRepo
	fraud    fraudChecker
	audit    auditLogger
	tx       txManager
	clock    clockwork.Clock
	log      *slog.Logger

	required []domain.DocumentType
	cfg      config.VerificationConfig
	sla      *SLAMonitor
}

// NewService creates a new Verification service.
func NewService(
	log *slog.Logger,
	requests requestRepo,
	fraud fraudChecker,
	audit auditLogger,
	tx txManager,
	clock clockwork.Clock,
	cfg config.VerificationConfig,
) (*Service, error) {
	required := make([]domain.DocumentType, 0, len(cfg.RequiredDocuments))
	for _, raw := range cfg.RequiredDocuments {
		t := domain.DocumentType(raw)
		if !t.IsValid() {
			return nil, fmt.Errorf("unknown required document type %q", raw)
		}
		required = append(required, t)
	}

	return &Service{
		requests: requests,
		fraud:    fraud,
		audit:    audit,
		tx:       tx,
		clock:    clock,
		log:      log,
		required: required,
		cfg:      cfg,
		sla:      NewSLAMonitor(clock),
	}, nil
}

// SLA returns the monitor bound to the service clock.
func (s *Service) SLA() *SLAMonitor { return s.sla }

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// withConflictRetry runs fn and retries it exactly once when the write lost
// an optimistic-version race. Event handlers (payments, uploads) retry
// against fresh state; admin decisions surface the conflict instead.
func (s *Service) withConflictRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.tx.RunInTx(ctx, fn)
	if err != nil && errors.Is(err, domain.ErrConcurrentModification) {
		s.log.WarnContext(ctx, "optimistic conflict, retrying against fresh state")
		return s.tx.RunInTx(ctx, fn)
	}
	return err
}

// openRequest returns the brand's active request, creating a fresh
// PENDING_DOCUMENTS one (the first real state after the virtual NOT_STARTED)
// when none exists. Idempotent upsert: events for an unknown brand never fail.
func (s *Service) openRequest(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error) {
	req, err := s.requests.GetActive(ctx, brandID)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get active request: %w", err)
	}

	now := s.clock.Now()
	created, err := s.requests.Create(ctx, &domain.VerificationRequest{
		ID:          uuid.New(),
		BrandID:     brandID,
		Status:      domain.VerificationPendingDocuments,
		SubmittedAt: now,
		Documents:   map[domain.DocumentType]domain.DocumentRecord{},
	})
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if err := s.audit.Log(ctx, s.newAudit(ctx, domain.AuditVerificationCreated, created.ID, nil, nil)); err != nil {
		return nil, fmt.Errorf("audit create: %w", err)
	}

	s.log.InfoContext(ctx, "verification request opened",
		slog.String("brand_id", brandID.String()),
		slog.String("request_id", created.ID.String()),
	)
	return created, nil
}

// newAudit builds an audit entry attributed to the context actor (or the
// system actor for engine-initiated mutations).
func (s *Service) newAudit(ctx context.Context, action domain.AuditAction, requestID uuid.UUID, reason *string, metadata map[string]any) domain.AuditEntry {
	return domain.AuditEntry{
		ID:         uuid.New(),
		ActorID:    ctxutil.ActorOrSystem(ctx),
		Action:     action,
		TargetType: domain.TargetVerificationRequest,
		TargetID:   requestID,
		Reason:     reason,
		Metadata:   metadata,
		CreatedAt:  s.clock.Now(),
	}
}

// auditBlocked records a guard-rejected transition attempt so operators can
// see blocked approvals and premature payments. Callers invoke it after the
// failed transaction rolled back, never inside it: the blocked entry must
// survive the rollback.
func (s *Service) auditBlocked(ctx context.Context, requestID uuid.UUID, to domain.VerificationStatus, guardErr *domain.GuardFailedError) error {
	reason := guardErr.Reason
	return s.audit.Log(ctx, s.newAudit(ctx, domain.AuditTransitionBlocked, requestID, &reason, map[string]any{
		"guard":     guardErr.Guard,
		"to_status": to.String(),
	}))
}

// maybeStartReview auto-advances PAID_PENDING to UNDER_REVIEW once every
// required document is uploaded. The state exists purely to enter the admin
// queue, so no guard beyond document presence applies.
func (s *Service) maybeStartReview(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationRequest, error) {
	if req.Status != domain.VerificationPaidPending || !req.HasAllRequired(s.required) {
		return req, nil
	}

	updated, err := s.requests.UpdateStatus(ctx, domain.StatusUpdateParams{
		RequestID:       req.ID,
		ExpectedVersion: req.Version,
		Status:          domain.VerificationUnderReview,
	})
	if err != nil {
		return nil, fmt.Errorf("start review: %w", err)
	}

	if err := s.audit.Log(ctx, s.newAudit(ctx, domain.AuditReviewStarted, req.ID, nil, nil)); err != nil {
		return nil, fmt.Errorf("audit review start: %w", err)
	}
	return updated, nil
}
