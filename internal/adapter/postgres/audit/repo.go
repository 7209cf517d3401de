// Package audit implements the append-only audit trail repository using
// PostgreSQL. Entries are written inside the same transaction as the state
// change they record, so trail and state never diverge.
package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/resolvehub/trustengine-backend/internal/adapter/postgres"
	"github.com/resolvehub/trustengine-backend/internal/domain"
)

const entryColumns = `id, actor_id, action, target_type, target_id, reason, metadata, created_at`

// Repo provides audit trail persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Log appends one entry. The trail is append-only: there is no update or
// delete path anywhere in the adapter.
func (r *Repo) Log(ctx context.Context, entry domain.AuditEntry) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	_, err := q.Exec(ctx, `INSERT INTO audit_log
		(id, actor_id, action, target_type, target_id, reason, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.ActorID, entry.Action, entry.TargetType, entry.TargetID,
		entry.Reason, metadata, entry.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "audit_entry", entry.ID)
	}
	return nil
}

// ListByTarget returns the entries for one target, newest first.
func (r *Repo) ListByTarget(ctx context.Context, targetType domain.TargetType, targetID uuid.UUID, limit, offset int) ([]domain.AuditEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT `+entryColumns+`
		FROM audit_log
		WHERE target_type = $1 AND target_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		targetType, targetID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit entries by target: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListRecent returns the latest entries across all targets.
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT `+entryColumns+`
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID,
			&e.Reason, &e.Metadata, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
