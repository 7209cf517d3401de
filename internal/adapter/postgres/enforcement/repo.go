// Package enforcement implements the EnforcementAction repository using
// PostgreSQL.
package enforcement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/resolvehub/trustengine-backend/internal/adapter/postgres"
	"github.com/resolvehub/trustengine-backend/internal/domain"
)

const actionColumns = `id, brand_id, action_type, reason, created_at, expires_at, resolved_at`

// Repo provides enforcement action persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new enforcement repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a new enforcement action.
func (r *Repo) Create(ctx context.Context, action *domain.EnforcementAction) (*domain.EnforcementAction, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `INSERT INTO enforcement_actions
		(id, brand_id, action_type, reason, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+actionColumns,
		action.ID, action.BrandID, action.ActionType, action.Reason, action.CreatedAt, action.ExpiresAt)

	created, err := scanAction(row)
	if err != nil {
		return nil, postgres.MapError(err, "enforcement_action", action.ID)
	}
	return created, nil
}

// GetUnresolved returns the brand's actions with no resolvedAt, most severe
// first, newest first within a severity.
func (r *Repo) GetUnresolved(ctx context.Context, brandID uuid.UUID) ([]domain.EnforcementAction, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT `+actionColumns+`
		FROM enforcement_actions
		WHERE brand_id = $1 AND resolved_at IS NULL
		ORDER BY
			CASE action_type
				WHEN 'BAN' THEN 4
				WHEN 'SUSPENSION' THEN 3
				WHEN 'INFO_REQUEST' THEN 2
				ELSE 1
			END DESC,
			created_at DESC`,
		brandID)
	if err != nil {
		return nil, fmt.Errorf("get unresolved enforcement actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.EnforcementAction
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enforcement action: %w", err)
		}
		actions = append(actions, *action)
	}
	return actions, rows.Err()
}

// CountRecentByType counts the brand's actions of the given type created
// after the cutoff, resolved or not.
func (r *Repo) CountRecentByType(ctx context.Context, brandID uuid.UUID, actionType domain.EnforcementType, since time.Time) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*)
		FROM enforcement_actions
		WHERE brand_id = $1 AND action_type = $2 AND created_at > $3`,
		brandID, actionType, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent enforcement actions: %w", err)
	}
	return count, nil
}

// Resolve sets resolvedAt iff it is still unset. Returns false when another
// writer already resolved the action.
func (r *Repo) Resolve(ctx context.Context, id uuid.UUID, resolvedAt time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `UPDATE enforcement_actions
		SET resolved_at = $2
		WHERE id = $1 AND resolved_at IS NULL`,
		id, resolvedAt)
	if err != nil {
		return false, postgres.MapError(err, "enforcement_action", id)
	}
	return tag.RowsAffected() == 1, nil
}

func scanAction(row pgx.Row) (*domain.EnforcementAction, error) {
	var action domain.EnforcementAction
	err := row.Scan(
		&action.ID,
		&action.BrandID,
		&action.ActionType,
		&action.Reason,
		&action.CreatedAt,
		&action.ExpiresAt,
		&action.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &action, nil
}
