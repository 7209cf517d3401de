// Package governance turns accumulated signals — open escalations, fraud
// suspicion, verification state — into enforcement actions against brands,
// with an append-only audit trail.
package governance

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

type enforcementRepo interface {
	Create(ctx context.Context, action *domain.EnforcementAction) (*domain.EnforcementAction, error)
	// GetUnresolved returns actions with no resolvedAt, most severe first.
	GetUnresolved(ctx context.Context, brandID uuid.UUID) ([]domain.EnforcementAction, error)
	CountRecentByType(ctx context.Context, brandID uuid.UUID, actionType domain.EnforcementType, since time.Time) (int, error)
	// Resolve sets resolvedAt iff it is still unset. Returns false when
	// another caller resolved the action first.
	Resolve(ctx context.Context, id uuid.UUID, resolvedAt time.Time) (bool, error)
}

type escalationRepo interface {
	GetOpen(ctx context.Context, brandID uuid.UUID) ([]domain.EscalationCase, error)
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

type brandSource interface {
	ListRatedBrandIDs(ctx context.Context) ([]uuid.UUID, error)
}

type trustReader interface {
	GetTrustScore(ctx context.Context, brandID uuid.UUID) (domain.TrustScoreResult, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the governance engine.
type Service struct {
	enforcements enforcementRepo
	escalations  escalationRepo
	fraud        fraudChecker
	audit        auditLogger
	tx           txManager
	brands       brandSource
	trust        trustReader
	clock        clockwork.Clock
	log          *slog.Logger
	cfg          config.GovernanceConfig
}

// NewService creates a new Governance service.
func NewService(
	log *slog.Logger,
	enforcements enforcementRepo,
	escalations escalationRepo,
	fraud fraudChecker,
	audit auditLogger,
	tx txManager,
	brands brandSource,
	trust trustReader,
	clock clockwork.Clock,
	cfg config.GovernanceConfig,
) *Service {
	return &Service{
		enforcements: enforcements,
		escalations:  escalations,
		fraud:        fraud,
		audit:        audit,
		tx:           tx,
		brands:       brands,
		trust:        trust,
		clock:        clock,
		log:          log,
		cfg:          cfg,
	}
}

// Decide recomputes the governance inputs for a brand and creates an
// enforcement action when policy demands one. Inputs are always fetched
// fresh — escalation counts, the fraud signal, and the currently active
// enforcement are never trusted from a caller snapshot.
//
// A "no action" decision is not audited; every created EnforcementAction is,
// unconditionally, in the same transaction.
func (s *Service) Decide(ctx context.Context, brandID uuid.UUID) (*domain.EnforcementAction, error) {
	now := s.clock.Now()
	windowStart := now.AddDate(0, 0, -s.cfg.EscalationWindowDays)

	open, err := s.escalations.GetOpen(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("get open escalations: %w", err)
	}

	recentOpen := 0
	severeCase := false
	for _, c := range open {
		if c.CreatedAt.After(windowStart) {
			recentOpen++
			if c.Severe {
				severeCase = true
			}
		}
	}

	signal, err := s.fraud.Signal(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("fraud signal: %w", err)
	}

	active, err := s.GetActiveEnforcement(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("get active enforcement: %w", err)
	}

	warnings, err := s.enforcements.CountRecentByType(ctx, brandID, domain.EnforcementWarning, windowStart)
	if err != nil {
		return nil, fmt.Errorf("count recent warnings: %w", err)
	}

	decision := s.policy(policyInputs{
		recentOpenEscalations: recentOpen,
		severeCase:            severeCase,
		recentWarnings:        warnings,
		suspicious:            signal.Suspicious,
		active:                active,
	})
	if decision == nil {
		return nil, nil
	}

	action := &domain.EnforcementAction{
		ID:         uuid.New(),
		BrandID:    brandID,
		ActionType: decision.actionType,
		Reason:     decision.reason,
		CreatedAt:  now,
		ExpiresAt:  decision.expiresAt,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.enforcements.Create(ctx, action)
		if err != nil {
			return fmt.Errorf("create enforcement: %w", err)
		}
		action = created

		reason := action.Reason
		return s.audit.Log(ctx, domain.AuditEntry{
			ID:         uuid.New(),
			ActorID:    ctxutil.ActorOrSystem(ctx),
			Action:     domain.AuditEnforcementCreated,
			TargetType: domain.TargetEnforcementAction,
			TargetID:   action.ID,
			Reason:     &reason,
			Metadata: map[string]any{
				"brand_id":    brandID.String(),
				"action_type": action.ActionType.String(),
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "enforcement action created",
		slog.String("brand_id", brandID.String()),
		slog.String("action_type", action.ActionType.String()),
		slog.String("reason", action.Reason),
	)
	return action, nil
}

type policyInputs struct {
	recentOpenEscalations int
	severeCase            bool
	recentWarnings        int
	suspicious            bool
	active                *domain.EnforcementAction
}

type policyDecision struct {
	actionType domain.EnforcementType
	reason     string
	expiresAt  *time.Time
}

// policy evaluates the configured thresholds, most severe outcome first.
// An active action of equal or higher severity suppresses re-issuing the
// same level on every call.
func (s *Service) policy(in policyInputs) *policyDecision {
	activeSeverity := 0
	if in.active != nil {
		activeSeverity = in.active.ActionType.Severity()
	}

	if in.suspicious && in.active != nil && in.active.ActionType == domain.EnforcementSuspension {
		return &policyDecision{
			actionType: domain.EnforcementBan,
			reason:     "fraud suspicion during an active suspension",
		}
	}

	if (in.recentWarnings >= s.cfg.SuspensionAfterWarnings || in.severeCase) &&
		activeSeverity < domain.EnforcementSuspension.Severity() {
		expires := s.clock.Now().AddDate(0, 0, s.cfg.SuspensionDays)
		reason := fmt.Sprintf("%d warnings within %d days", in.recentWarnings, s.cfg.EscalationWindowDays)
		if in.severeCase {
			reason = "severe escalation case"
		}
		return &policyDecision{
			actionType: domain.EnforcementSuspension,
			reason:     reason,
			expiresAt:  &expires,
		}
	}

	if in.suspicious && in.active == nil {
		return &policyDecision{
			actionType: domain.EnforcementInfoRequest,
			reason:     "fraud signal raised, additional information required",
		}
	}

	if in.recentOpenEscalations >= s.cfg.WarningThreshold &&
		activeSeverity < domain.EnforcementWarning.Severity() {
		expires := s.clock.Now().AddDate(0, 0, s.cfg.EscalationWindowDays)
		return &policyDecision{
			actionType: domain.EnforcementWarning,
			reason:     fmt.Sprintf("%d open escalations within %d days", in.recentOpenEscalations, s.cfg.EscalationWindowDays),
			expiresAt:  &expires,
		}
	}

	return nil
}

// GetActiveEnforcement returns the most severe enforcement action currently
// in force, applying lazy lapse: actions past their expiresAt are resolved
// on read with a compare-and-swap, and only the winning reader writes the
// single ENFORCEMENT_LAPSED audit entry. Returns nil when nothing is active.
func (s *Service) GetActiveEnforcement(ctx context.Context, brandID uuid.UUID) (*domain.EnforcementAction, error) {
	unresolved, err := s.enforcements.GetUnresolved(ctx, brandID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unresolved enforcements: %w", err)
	}

	now := s.clock.Now()
	for i := range unresolved {
		action := &unresolved[i]
		if action.Active(now) {
			return action, nil
		}
		if err := s.lapse(ctx, action, now); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (s *Service) lapse(ctx context.Context, action *domain.EnforcementAction, now time.Time) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		won, err := s.enforcements.Resolve(ctx, action.ID, now)
		if err != nil {
			return fmt.Errorf("resolve enforcement: %w", err)
		}
		if !won {
			// Concurrent reader lapsed it first and wrote the audit entry.
			return nil
		}

		return s.audit.Log(ctx, domain.AuditEntry{
			ID:         uuid.New(),
			ActorID:    domain.SystemActorID,
			Action:     domain.AuditEnforcementLapsed,
			TargetType: domain.TargetEnforcementAction,
			TargetID:   action.ID,
			Metadata: map[string]any{
				"brand_id":    action.BrandID.String(),
				"action_type": action.ActionType.String(),
			},
			CreatedAt: now,
		})
	})
}
