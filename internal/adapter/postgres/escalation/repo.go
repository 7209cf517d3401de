// Package escalation reads the escalation-case projection maintained by the
// complaint subsystem. The engine only consumes these rows as governance
// signals, so the repository is read-only.
package escalation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/resolvehub/trustengine-backend/internal/adapter/postgres"
	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// Repo provides read access to escalation cases.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new escalation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetOpen returns the brand's open escalation cases, newest first.
func (r *Repo) GetOpen(ctx context.Context, brandID uuid.UUID) ([]domain.EscalationCase, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT id, complaint_id, brand_id, escalated_by, reason, severe, status, created_at
		FROM escalation_cases
		WHERE brand_id = $1 AND status = 'OPEN'
		ORDER BY created_at DESC`,
		brandID)
	if err != nil {
		return nil, fmt.Errorf("get open escalation cases: %w", err)
	}
	defer rows.Close()

	var cases []domain.EscalationCase
	for rows.Next() {
		var c domain.EscalationCase
		err := rows.Scan(&c.ID, &c.ComplaintID, &c.BrandID, &c.EscalatedBy, &c.Reason, &c.Severe, &c.Status, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan escalation case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}
