package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// GetStatus returns the brand's current verification request with lazy
// expiry applied. There is no background scheduler: every read first checks
// whether an APPROVED request has passed its expiry and flips it here.
//
// The flip is a compare-and-swap on the request version, so under concurrent
// reads exactly one caller performs the transition and writes the single
// VERIFICATION_EXPIRED audit entry; the others observe the already-expired
// row.
//
// A brand with no request at all yields a synthetic NOT_STARTED view, never
// ErrNotFound.
func (s *Service) GetStatus(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error) {
	req, err := s.requests.GetCurrent(ctx, brandID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.VerificationRequest{
			BrandID:   brandID,
			Status:    domain.VerificationNotStarted,
			Documents: map[domain.DocumentType]domain.DocumentRecord{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get current request: %w", err)
	}

	if !req.IsExpired(s.clock.Now()) {
		return req, nil
	}

	expired, err := s.expire(ctx, req)
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// expire performs the APPROVED -> EXPIRED transition. Losing the CAS race is
// not an error: whoever won already wrote the audit entry, so we re-read.
func (s *Service) expire(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationRequest, error) {
	var updated *domain.VerificationRequest
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.requests.UpdateStatus(ctx, domain.StatusUpdateParams{
			RequestID:       req.ID,
			ExpectedVersion: req.Version,
			Status:          domain.VerificationExpired,
		})
		if err != nil {
			return err
		}

		if !s.cfg.RetainDocumentsOnExpiry {
			types := make([]domain.DocumentType, 0, len(req.Documents))
			for t := range req.Documents {
				types = append(types, t)
			}
			if len(types) > 0 {
				if err := s.requests.ClearDocuments(ctx, req.ID, types); err != nil {
					return fmt.Errorf("clear documents on expiry: %w", err)
				}
				updated.Documents = map[domain.DocumentType]domain.DocumentRecord{}
			}
		}

		return s.audit.Log(ctx, s.newAudit(ctx, domain.AuditVerificationExpired, req.ID, nil, nil))
	})
	if errors.Is(err, domain.ErrConcurrentModification) {
		// Another reader flipped it first; the row is current now.
		current, rerr := s.requests.GetCurrent(ctx, req.BrandID)
		if rerr != nil {
			return nil, fmt.Errorf("reload after expiry race: %w", rerr)
		}
		return current, nil
	}
	if err != nil {
		return nil, fmt.Errorf("expire request: %w", err)
	}

	s.log.InfoContext(ctx, "verification expired",
		slog.String("brand_id", req.BrandID.String()),
		slog.String("request_id", req.ID.String()),
	)
	return updated, nil
}
