package verification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// OnDocumentUploaded records a document upload from the upload collaborator.
// The first upload for a brand opens a fresh request; re-uploading a type
// replaces the previous record. A resubmission moves MORE_INFO back to
// PENDING_DOCUMENTS, and a fully documented PAID_PENDING request
// auto-advances into the review queue.
func (s *Service) OnDocumentUploaded(ctx context.Context, brandID uuid.UUID, docType domain.DocumentType, fileRef string) (*domain.VerificationRequest, error) {
	if !docType.IsValid() {
		return nil, domain.NewValidationError("type", fmt.Sprintf("unknown document type %q", docType))
	}
	if fileRef == "" {
		return nil, domain.NewValidationError("file_ref", "must not be empty")
	}

	var result *domain.VerificationRequest
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		req, err := s.openRequest(ctx, brandID)
		if err != nil {
			return err
		}

		switch req.Status {
		case domain.VerificationPendingDocuments, domain.VerificationPaidPending:
			// uploads allowed in place
		case domain.VerificationMoreInfo:
			req, err = s.requests.UpdateStatus(ctx, domain.StatusUpdateParams{
				RequestID:       req.ID,
				ExpectedVersion: req.Version,
				Status:          domain.VerificationPendingDocuments,
			})
			if err != nil {
				return fmt.Errorf("resubmission transition: %w", err)
			}
		default:
			return &domain.InvalidTransitionError{From: req.Status, To: domain.VerificationPendingDocuments}
		}

		doc := domain.DocumentRecord{
			Type:       docType,
			Status:     domain.DocumentPending,
			FileRef:    fileRef,
			UploadedAt: s.clock.Now(),
		}
		if err := s.requests.UpsertDocument(ctx, req.ID, doc); err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}
		req.Documents[docType] = doc

		if err := s.audit.Log(ctx, s.newAudit(ctx, domain.AuditDocumentUploaded, req.ID, nil, map[string]any{
			"document_type": docType.String(),
		})); err != nil {
			return fmt.Errorf("audit upload: %w", err)
		}

		result, err = s.maybeStartReview(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "document uploaded",
		slog.String("brand_id", brandID.String()),
		slog.String("type", docType.String()),
		slog.String("status", result.Status.String()),
	)
	return result, nil
}

// ReviewDocument records an admin's verdict on a single document. Approval
// of the whole request still requires every required document approved; this
// only mutates the document record.
func (s *Service) ReviewDocument(ctx context.Context, brandID uuid.UUID, docType domain.DocumentType, status domain.DocumentStatus, reason *string) error {
	if !docType.IsValid() {
		return domain.NewValidationError("type", fmt.Sprintf("unknown document type %q", docType))
	}
	if !status.IsValid() {
		return domain.NewValidationError("status", fmt.Sprintf("unknown document status %q", status))
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetActive(ctx, brandID)
		if err != nil {
			return fmt.Errorf("get active request: %w", err)
		}
		if _, ok := req.Documents[docType]; !ok {
			return fmt.Errorf("document %s: %w", docType, domain.ErrNotFound)
		}

		if err := s.requests.SetDocumentStatus(ctx, req.ID, docType, status, reason); err != nil {
			return fmt.Errorf("set document status: %w", err)
		}

		return s.audit.Log(ctx, s.newAudit(ctx, domain.AuditDocumentReviewed, req.ID, reason, map[string]any{
			"document_type": docType.String(),
			"new_status":    status.String(),
		}))
	})
}
