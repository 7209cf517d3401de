package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// OnAdminDecision applies an admin verdict to an UNDER_REVIEW request.
//
// The approval guards are enforced by the engine regardless of what the
// admin's UI claimed: document completeness and the fraud signal are
// recomputed at decision time, never trusted from a snapshot. A guard
// failure is a GuardFailedError naming the guard — distinct from
// InvalidTransitionError — and the blocked attempt is audited.
//
// Admin decisions do not retry on version conflict: two admins racing on the
// same request resolve to exactly one final status; the loser receives
// ErrConcurrentModification and must re-read.
func (s *Service) OnAdminDecision(ctx context.Context, brandID uuid.UUID, decision domain.AdminDecision, reason *string, resubmit []domain.DocumentType) (*domain.VerificationRequest, error) {
	if !decision.IsValid() {
		return nil, domain.NewValidationError("decision", fmt.Sprintf("unknown decision %q", decision))
	}

	var result *domain.VerificationRequest
	var requestID uuid.UUID
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetActive(ctx, brandID)
		if err != nil {
			return fmt.Errorf("get active request: %w", err)
		}
		requestID = req.ID

		var updated *domain.VerificationRequest
		switch decision {
		case domain.DecisionApprove:
			updated, err = s.approve(ctx, req)
		case domain.DecisionReject:
			updated, err = s.reject(ctx, req, reason)
		case domain.DecisionMoreInfo:
			updated, err = s.requestMoreInfo(ctx, req, reason, resubmit)
		}
		if err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		// Written after the rollback so the blocked attempt survives it.
		var guardErr *domain.GuardFailedError
		if errors.As(err, &guardErr) && requestID != uuid.Nil {
			if auditErr := s.auditBlocked(ctx, requestID, domain.VerificationApproved, guardErr); auditErr != nil {
				s.log.ErrorContext(ctx, "audit blocked decision",
					slog.String("error", auditErr.Error()),
				)
			}
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "admin decision applied",
		slog.String("brand_id", brandID.String()),
		slog.String("decision", decision.String()),
		slog.String("status", result.Status.String()),
	)
	return result, nil
}

func (s *Service) approve(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationRequest, error) {
	if !domain.CanTransition(req.Status, domain.VerificationApproved) {
		return nil, &domain.InvalidTransitionError{From: req.Status, To: domain.VerificationApproved}
	}

	if !req.AllRequiredApproved(s.required) {
		return nil, &domain.GuardFailedError{
			Guard:  domain.GuardDocumentsApproved,
			Reason: "not every required document is approved",
		}
	}

	// Recomputed at decision time from current rejection history; a stale
	// admin screen cannot approve a brand that turned suspicious meanwhile.
	signal, err := s.fraud.Signal(ctx, req.BrandID)
	if err != nil {
		return nil, fmt.Errorf("fraud signal: %w", err)
	}
	if signal.Suspicious {
		return nil, &domain.GuardFailedError{
			Guard:  domain.GuardFraudSignal,
			Reason: fmt.Sprintf("brand has %d recent verification rejections", signal.RejectionCount),
		}
	}

	now := s.clock.Now()
	expiresAt := now.AddDate(0, 0, s.cfg.ExpiryDays)
	updated, err := s.requests.UpdateStatus(ctx, domain.StatusUpdateParams{
		RequestID:       req.ID,
		ExpectedVersion: req.Version,
		Status:          domain.VerificationApproved,
		ApprovedAt:      &now,
		ExpiresAt:       &expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("approve transition: %w", err)
	}

	if err := s.audit.Log(ctx, s.newAudit(ctx, domain.AuditVerificationApproved, req.ID, nil, map[string]any{
		"expires_at": expiresAt,
	})); err != nil {
		return nil, fmt.Errorf("audit approval: %w", err)
	}
	return updated, nil
}

func (s *Service) reject(ctx context.Context, req *domain.VerificationRequest, reason *string) (*domain.VerificationRequest, error) {
	if !domain.CanTransition(req.Status, domain.VerificationRejected) {
		return nil, &domain.InvalidTransitionError{From: req.Status, To: domain.VerificationRejected}
	}

	updated, err := s.requests.UpdateStatus(ctx, domain.StatusUpdateParams{
		RequestID:       req.ID,
		ExpectedVersion: req.Version,
		Status:          domain.VerificationRejected,
		RejectionReason: reason,
	})
	if err != nil {
		return nil, fmt.Errorf("reject transition: %w", err)
	}

	if err := s.audit.Log(ctx, s.newAudit(ctx, domain.AuditVerificationRejected, req.ID, reason, nil)); err != nil {
		return nil, fmt.Errorf("audit rejection: %w", err)
	}
	return updated, nil
}

// requestMoreInfo moves the request to MORE_INFO, clearing only the
// documents marked for resubmission; already-approved documents survive.
func (s *Service) requestMoreInfo(ctx context.Context, req *domain.VerificationRequest, reason *string, resubmit []domain.DocumentType) (*domain.VerificationRequest, error) {
	if !domain.CanTransition(req.Status, domain.VerificationMoreInfo) {
		return nil, &domain.InvalidTransitionError{From: req.Status, To: domain.VerificationMoreInfo}
	}
	for _, t := range resubmit {
		if !t.IsValid() {
			return nil, domain.NewValidationError("resubmit", fmt.Sprintf("unknown document type %q", t))
		}
	}

	updated, err := s.requests.UpdateStatus(ctx, domain.StatusUpdateParams{
		RequestID:       req.ID,
		ExpectedVersion: req.Version,
		Status:          domain.VerificationMoreInfo,
		RejectionReason: reason,
	})
	if err != nil {
		return nil, fmt.Errorf("more-info transition: %w", err)
	}

	if len(resubmit) > 0 {
		if err := s.requests.ClearDocuments(ctx, req.ID, resubmit); err != nil {
			return nil, fmt.Errorf("clear documents: %w", err)
		}
		for _, t := range resubmit {
			delete(updated.Documents, t)
		}
	}

	cleared := make([]string, 0, len(resubmit))
	for _, t := range resubmit {
		cleared = append(cleared, t.String())
	}
	if err := s.audit.Log(ctx, s.newAudit(ctx, domain.AuditMoreInfoRequested, req.ID, reason, map[string]any{
		"resubmit": cleared,
	})); err != nil {
		return nil, fmt.Errorf("audit more-info: %w", err)
	}
	return updated, nil
}
