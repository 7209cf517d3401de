// Package verification implements the VerificationRequest repository using
// PostgreSQL. Status writes are guarded by an optimistic version column so
// concurrent transitions on the same brand serialize instead of overwriting
// each other.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/resolvehub/trustengine-backend/internal/adapter/postgres"
	"github.com/resolvehub/trustengine-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const requestColumns = `id, brand_id, status, plan_code, submitted_at, paid_at,
	approved_at, expires_at, rejection_reason, version, created_at, updated_at`

// Repo provides verification request persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new verification repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// GetActive returns the brand's single non-terminal request.
func (r *Repo) GetActive(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+requestColumns+`
		FROM verification_requests
		WHERE brand_id = $1 AND status NOT IN ('REJECTED', 'EXPIRED')`,
		brandID)

	req, err := scanRequest(row)
	if err != nil {
		return nil, postgres.MapError(err, "verification_request", brandID)
	}
	if err := r.loadDocuments(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetCurrent returns the brand's most recent request regardless of state.
func (r *Repo) GetCurrent(ctx context.Context, brandID uuid.UUID) (*domain.VerificationRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+requestColumns+`
		FROM verification_requests
		WHERE brand_id = $1
		ORDER BY created_at DESC
		LIMIT 1`,
		brandID)

	req, err := scanRequest(row)
	if err != nil {
		return nil, postgres.MapError(err, "verification_request", brandID)
	}
	if err := r.loadDocuments(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// CountByStatus returns the number of requests per status.
func (r *Repo) CountByStatus(ctx context.Context) (map[domain.VerificationStatus]int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT status, COUNT(*)
		FROM verification_requests
		GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.VerificationStatus]int)
	for rows.Next() {
		var status domain.VerificationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// ListInFlight returns every request whose SLA clock is running.
func (r *Repo) ListInFlight(ctx context.Context) ([]domain.VerificationRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT `+requestColumns+`
		FROM verification_requests
		WHERE status IN ('PAID_PENDING', 'UNDER_REVIEW')
		ORDER BY submitted_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list in-flight requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.VerificationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan in-flight request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Create inserts a fresh request. The partial unique index on brand_id
// rejects a second non-terminal request with domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, req *domain.VerificationRequest) (*domain.VerificationRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `INSERT INTO verification_requests
		(id, brand_id, status, plan_code, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+requestColumns,
		req.ID, req.BrandID, req.Status, req.PlanCode, req.SubmittedAt)

	created, err := scanRequest(row)
	if err != nil {
		return nil, postgres.MapError(err, "verification_request", req.ID)
	}
	created.Documents = map[domain.DocumentType]domain.DocumentRecord{}
	return created, nil
}

// UpdateStatus performs a version-guarded status write. The WHERE clause
// matches both id and the version the caller read; zero rows affected means
// another writer got there first -> domain.ErrConcurrentModification.
func (r *Repo) UpdateStatus(ctx context.Context, params domain.StatusUpdateParams) (*domain.VerificationRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	update := psql.Update("verification_requests").
		Set("status", params.Status).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": params.RequestID, "version": params.ExpectedVersion}).
		Suffix("RETURNING " + requestColumns)

	if params.PlanCode != nil {
		update = update.Set("plan_code", *params.PlanCode)
	}
	if params.PaidAt != nil {
		update = update.Set("paid_at", *params.PaidAt)
	}
	if params.ApprovedAt != nil {
		update = update.Set("approved_at", *params.ApprovedAt)
	}
	if params.ExpiresAt != nil {
		update = update.Set("expires_at", *params.ExpiresAt)
	}
	if params.RejectionReason != nil {
		update = update.Set("rejection_reason", *params.RejectionReason)
	}

	sqlStr, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build status update: %w", err)
	}

	req, err := scanRequest(q.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The row exists with another version, or does not exist at all.
			// Distinguish so callers can treat the two correctly.
			var exists bool
			if probeErr := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM verification_requests WHERE id = $1)`,
				params.RequestID).Scan(&exists); probeErr != nil {
				return nil, fmt.Errorf("probe request existence: %w", probeErr)
			}
			if exists {
				return nil, fmt.Errorf("verification_request %s: %w", params.RequestID, domain.ErrConcurrentModification)
			}
			return nil, fmt.Errorf("verification_request %s: %w", params.RequestID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "verification_request", params.RequestID)
	}

	if err := r.loadDocuments(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// UpsertDocument inserts or replaces the document of the given type.
func (r *Repo) UpsertDocument(ctx context.Context, requestID uuid.UUID, doc domain.DocumentRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, `INSERT INTO verification_documents
		(request_id, doc_type, status, file_ref, rejection_reason, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (request_id, doc_type) DO UPDATE SET
			status = EXCLUDED.status,
			file_ref = EXCLUDED.file_ref,
			rejection_reason = EXCLUDED.rejection_reason,
			uploaded_at = EXCLUDED.uploaded_at`,
		requestID, doc.Type, doc.Status, doc.FileRef, doc.RejectionReason, doc.UploadedAt)
	if err != nil {
		return postgres.MapError(err, "verification_document", requestID)
	}
	return nil
}

// SetDocumentStatus records an admin verdict on one document.
func (r *Repo) SetDocumentStatus(ctx context.Context, requestID uuid.UUID, docType domain.DocumentType, status domain.DocumentStatus, reason *string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `UPDATE verification_documents
		SET status = $3, rejection_reason = $4
		WHERE request_id = $1 AND doc_type = $2`,
		requestID, docType, status, reason)
	if err != nil {
		return postgres.MapError(err, "verification_document", requestID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("verification_document %s/%s: %w", requestID, docType, domain.ErrNotFound)
	}
	return nil
}

// ClearDocuments removes the documents of the given types.
func (r *Repo) ClearDocuments(ctx context.Context, requestID uuid.UUID, types []domain.DocumentType) error {
	if len(types) == 0 {
		return nil
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}

	_, err := q.Exec(ctx, `DELETE FROM verification_documents
		WHERE request_id = $1 AND doc_type = ANY($2)`,
		requestID, names)
	if err != nil {
		return postgres.MapError(err, "verification_document", requestID)
	}
	return nil
}

// RecordPayment inserts the payment keyed by providerRef. Returns false
// when the ref was already recorded: the insert is the idempotency check.
func (r *Repo) RecordPayment(ctx context.Context, requestID uuid.UUID, providerRef, planCode string, paidAt time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `INSERT INTO verification_payments
		(provider_ref, request_id, plan_code, paid_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider_ref) DO NOTHING`,
		providerRef, requestID, planCode, paidAt)
	if err != nil {
		return false, postgres.MapError(err, "verification_payment", requestID)
	}
	return tag.RowsAffected() == 1, nil
}

// ---------------------------------------------------------------------------
// Rejection history (fraud signal source)
// ---------------------------------------------------------------------------

// GetRejectionHistory returns every rejected request of the brand, newest
// first. The archive of REJECTED requests is the fraud detector's input.
func (r *Repo) GetRejectionHistory(ctx context.Context, brandID uuid.UUID) ([]domain.RejectionEvent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT id, brand_id, COALESCE(rejection_reason, ''), updated_at
		FROM verification_requests
		WHERE brand_id = $1 AND status = 'REJECTED'
		ORDER BY updated_at DESC`,
		brandID)
	if err != nil {
		return nil, fmt.Errorf("get rejection history: %w", err)
	}
	defer rows.Close()

	var events []domain.RejectionEvent
	for rows.Next() {
		var ev domain.RejectionEvent
		if err := rows.Scan(&ev.RequestID, &ev.BrandID, &ev.Reason, &ev.RejectedAt); err != nil {
			return nil, fmt.Errorf("scan rejection event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ListBrandsWithRejections groups rejections since the cutoff by brand.
func (r *Repo) ListBrandsWithRejections(ctx context.Context, since time.Time) (map[uuid.UUID][]domain.RejectionEvent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT id, brand_id, COALESCE(rejection_reason, ''), updated_at
		FROM verification_requests
		WHERE status = 'REJECTED' AND updated_at > $1
		ORDER BY brand_id, updated_at DESC`,
		since)
	if err != nil {
		return nil, fmt.Errorf("list brands with rejections: %w", err)
	}
	defer rows.Close()

	byBrand := make(map[uuid.UUID][]domain.RejectionEvent)
	for rows.Next() {
		var ev domain.RejectionEvent
		if err := rows.Scan(&ev.RequestID, &ev.BrandID, &ev.Reason, &ev.RejectedAt); err != nil {
			return nil, fmt.Errorf("scan rejection event: %w", err)
		}
		byBrand[ev.BrandID] = append(byBrand[ev.BrandID], ev)
	}
	return byBrand, rows.Err()
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanRequest(row pgx.Row) (*domain.VerificationRequest, error) {
	var req domain.VerificationRequest
	err := row.Scan(
		&req.ID,
		&req.BrandID,
		&req.Status,
		&req.PlanCode,
		&req.SubmittedAt,
		&req.PaidAt,
		&req.ApprovedAt,
		&req.ExpiresAt,
		&req.RejectionReason,
		&req.Version,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Documents = map[domain.DocumentType]domain.DocumentRecord{}
	return &req, nil
}

func (r *Repo) loadDocuments(ctx context.Context, req *domain.VerificationRequest) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT doc_type, status, file_ref, rejection_reason, uploaded_at
		FROM verification_documents
		WHERE request_id = $1`,
		req.ID)
	if err != nil {
		return fmt.Errorf("load documents for %s: %w", req.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc domain.DocumentRecord
		if err := rows.Scan(&doc.Type, &doc.Status, &doc.FileRef, &doc.RejectionReason, &doc.UploadedAt); err != nil {
			return fmt.Errorf("scan document for %s: %w", req.ID, err)
		}
		req.Documents[doc.Type] = doc
	}
	return rows.Err()
}
