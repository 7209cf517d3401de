package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// OnPaymentConfirmed handles a confirmed payment event from the billing
// collaborator.
//
// Idempotency: providerRef uniquely identifies the payment. A duplicate
// confirmation (webhook retry, double click) is a logged no-op — exactly one
// transition and one PAYMENT_CONFIRMED audit entry ever result from the same
// ref.
//
// Payment does not bypass document collection: at least one document must be
// uploaded before PENDING_DOCUMENTS can advance to PAID_PENDING.
func (s *Service) OnPaymentConfirmed(ctx context.Context, brandID uuid.UUID, planCode, providerRef string) (*domain.VerificationRequest, error) {
	if planCode == "" {
		return nil, domain.NewValidationError("plan_code", "must not be empty")
	}
	if providerRef == "" {
		return nil, domain.NewValidationError("provider_ref", "must not be empty")
	}

	// Open the request in its own committed transaction first. A payment
	// arriving for a brand with no active request must leave a persisted
	// PENDING_DOCUMENTS request behind even when the document guard below
	// blocks the advance and rolls the guarded transaction back.
	var requestID uuid.UUID
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.openRequest(ctx, brandID)
		if err != nil {
			return err
		}
		requestID = req.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var result *domain.VerificationRequest
	err = s.withConflictRetry(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetActive(ctx, brandID)
		if err != nil {
			return fmt.Errorf("get active request: %w", err)
		}
		requestID = req.ID

		now := s.clock.Now()
		recorded, err := s.requests.RecordPayment(ctx, req.ID, providerRef, planCode, now)
		if err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		if !recorded {
			// Duplicate confirmation for a ref we already processed.
			ref := providerRef
			if err := s.audit.Log(ctx, s.newAudit(ctx, domain.AuditDuplicatePayment, req.ID, &ref, nil)); err != nil {
				return fmt.Errorf("audit duplicate payment: %w", err)
			}
			s.log.WarnContext(ctx, "duplicate payment confirmation ignored",
				slog.String("brand_id", brandID.String()),
				slog.String("provider_ref", providerRef),
			)
			result = req
			return nil
		}

		if !domain.CanTransition(req.Status, domain.VerificationPaidPending) {
			return &domain.InvalidTransitionError{From: req.Status, To: domain.VerificationPaidPending}
		}

		if !req.HasUploadedDocument() {
			return &domain.GuardFailedError{
				Guard:  domain.GuardDocumentUploaded,
				Reason: "payment confirmed before any document was uploaded",
			}
		}

		plan := planCode
		req, err = s.requests.UpdateStatus(ctx, domain.StatusUpdateParams{
			RequestID:       req.ID,
			ExpectedVersion: req.Version,
			Status:          domain.VerificationPaidPending,
			PlanCode:        &plan,
			PaidAt:          &now,
		})
		if err != nil {
			return fmt.Errorf("paid transition: %w", err)
		}

		if err := s.audit.Log(ctx, s.newAudit(ctx, domain.AuditPaymentConfirmed, req.ID, nil, map[string]any{
			"plan_code":    planCode,
			"provider_ref": providerRef,
		})); err != nil {
			return fmt.Errorf("audit payment: %w", err)
		}

		result, err = s.maybeStartReview(ctx, req)
		return err
	})
	if err != nil {
		// The guard rollback undid the payment row but not the request,
		// which committed above; record the blocked attempt against it
		// so the refusal is visible in the trail.
		var guardErr *domain.GuardFailedError
		if errors.As(err, &guardErr) && requestID != uuid.Nil {
			if auditErr := s.auditBlocked(ctx, requestID, domain.VerificationPaidPending, guardErr); auditErr != nil {
				s.log.ErrorContext(ctx, "audit blocked payment",
					slog.String("error", auditErr.Error()),
				)
			}
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "payment confirmed",
		slog.String("brand_id", brandID.String()),
		slog.String("plan_code", planCode),
		slog.String("status", result.Status.String()),
	)
	return result, nil
}
