// Package audit exposes the read side of the append-only audit trail.
// Writes happen only inside the verification and governance services.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

type auditRepo interface {
	ListByTarget(ctx context.Context, targetType domain.TargetType, targetID uuid.UUID, limit, offset int) ([]domain.AuditEntry, error)
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

const defaultLimit = 50

// Service provides audit log queries for admin dashboards.
type Service struct {
	repo auditRepo
	log  *slog.Logger
}

// NewService creates a new Audit service.
func NewService(log *slog.Logger, repo auditRepo) *Service {
	return &Service{repo: repo, log: log}
}

// List returns the change history for a target, newest first.
func (s *Service) List(ctx context.Context, targetType domain.TargetType, targetID uuid.UUID, limit, offset int) ([]domain.AuditEntry, error) {
	if !targetType.IsValid() {
		return nil, domain.NewValidationError("target_type", fmt.Sprintf("unknown target type %q", targetType))
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.repo.ListByTarget(ctx, targetType, targetID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// Recent returns the latest entries across all targets.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	entries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit entries: %w", err)
	}
	return entries, nil
}
