// Package rating reads the rating and complaint projections owned by their
// respective subsystems. The engine derives trust inputs from them and never
// writes back.
package rating

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	postgres "github.com/resolvehub/trustengine-backend/internal/adapter/postgres"
	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// Repo provides read access to rating samples and activity signals.
type Repo struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
}

// New creates a new rating repository.
func New(pool *pgxpool.Pool, clock clockwork.Clock) *Repo {
	return &Repo{pool: pool, clock: clock}
}

// GetSamples returns every rating sample for the brand, oldest first.
func (r *Repo) GetSamples(ctx context.Context, brandID uuid.UUID) ([]domain.RatingSample, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT stars, has_comment, created_at
		FROM ratings
		WHERE brand_id = $1
		ORDER BY created_at ASC`,
		brandID)
	if err != nil {
		return nil, fmt.Errorf("get rating samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.RatingSample
	for rows.Next() {
		var s domain.RatingSample
		if err := rows.Scan(&s.Stars, &s.HasComment, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// GetActivitySignal computes the share of the brand's complaints inside the
// window that received a brand reply. A brand with no complaints in the
// window gets ratio 1: silence is not held against it.
func (r *Repo) GetActivitySignal(ctx context.Context, brandID uuid.UUID, windowDays int) (domain.ActivitySignal, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	cutoff := r.clock.Now().AddDate(0, 0, -windowDays)

	var total, replied int
	err := q.QueryRow(ctx, `SELECT COUNT(*), COUNT(first_brand_reply_at)
		FROM complaints
		WHERE brand_id = $1 AND created_at > $2`,
		brandID, cutoff).Scan(&total, &replied)
	if err != nil {
		return domain.ActivitySignal{}, fmt.Errorf("get activity signal: %w", err)
	}

	signal := domain.ActivitySignal{ResponseRatio: 1, WindowDays: windowDays}
	if total > 0 {
		signal.ResponseRatio = float64(replied) / float64(total)
	}
	return signal, nil
}

// ListRatedBrandIDs returns every brand with at least one rating sample.
func (r *Repo) ListRatedBrandIDs(ctx context.Context) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT DISTINCT brand_id FROM ratings`)
	if err != nil {
		return nil, fmt.Errorf("list rated brands: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan brand id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
