package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// SeedRequest inserts a verification request in the given status.
// Returns the filled domain.VerificationRequest with Version 1.
func SeedRequest(t *testing.T, pool *pgxpool.Pool, brandID uuid.UUID, status domain.VerificationStatus) domain.VerificationRequest {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	req := domain.VerificationRequest{
		ID:          uuid.New(),
		BrandID:     brandID,
		Status:      status,
		SubmittedAt: now,
		Documents:   map[domain.DocumentType]domain.DocumentRecord{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO verification_requests (id, brand_id, status, submitted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.BrandID, string(req.Status), req.SubmittedAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRequest insert: %v", err)
	}

	return req
}

// SeedDocument attaches a document to a request.
func SeedDocument(t *testing.T, pool *pgxpool.Pool, requestID uuid.UUID, docType domain.DocumentType, status domain.DocumentStatus) domain.DocumentRecord {
	t.Helper()
	ctx := context.Background()

	doc := domain.DocumentRecord{
		Type:       docType,
		Status:     status,
		FileRef:    "s3://test-bucket/" + uuid.New().String(),
		UploadedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO verification_documents (request_id, doc_type, status, file_ref, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		requestID, string(doc.Type), string(doc.Status), doc.FileRef, doc.UploadedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDocument insert: %v", err)
	}

	return doc
}

// SeedRejection inserts a terminal REJECTED request whose updated_at is the
// rejection instant. Used to build rejection history for fraud tests.
func SeedRejection(t *testing.T, pool *pgxpool.Pool, brandID uuid.UUID, rejectedAt time.Time) domain.RejectionEvent {
	t.Helper()
	ctx := context.Background()

	reason := "documents inconsistent"
	id := uuid.New()

	_, err := pool.Exec(ctx,
		`INSERT INTO verification_requests (id, brand_id, status, rejection_reason, submitted_at, created_at, updated_at)
		 VALUES ($1, $2, 'REJECTED', $3, $4, $4, $5)`,
		id, brandID, reason, rejectedAt.Add(-24*time.Hour), rejectedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRejection insert: %v", err)
	}

	return domain.RejectionEvent{
		RequestID:  id,
		BrandID:    brandID,
		Reason:     reason,
		RejectedAt: rejectedAt,
	}
}

// SeedRating inserts one rating sample for the brand.
func SeedRating(t *testing.T, pool *pgxpool.Pool, brandID uuid.UUID, stars int, hasComment bool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO ratings (id, brand_id, stars, has_comment, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		uuid.New(), brandID, stars, hasComment,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRating insert: %v", err)
	}
}

// SeedComplaint inserts a complaint; repliedAt nil means the brand never
// responded.
func SeedComplaint(t *testing.T, pool *pgxpool.Pool, brandID uuid.UUID, createdAt time.Time, repliedAt *time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO complaints (id, brand_id, created_at, first_brand_reply_at)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New(), brandID, createdAt, repliedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedComplaint insert: %v", err)
	}
}

// SeedEnforcement inserts an enforcement action. expiresAt nil means the
// action never lapses on its own.
func SeedEnforcement(t *testing.T, pool *pgxpool.Pool, brandID uuid.UUID, actionType domain.EnforcementType, expiresAt *time.Time) domain.EnforcementAction {
	t.Helper()
	ctx := context.Background()

	action := domain.EnforcementAction{
		ID:         uuid.New(),
		BrandID:    brandID,
		ActionType: actionType,
		Reason:     "seeded " + string(actionType),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		ExpiresAt:  expiresAt,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO enforcement_actions (id, brand_id, action_type, reason, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		action.ID, action.BrandID, string(action.ActionType), action.Reason, action.CreatedAt, action.ExpiresAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEnforcement insert: %v", err)
	}

	return action
}

// SeedEscalation inserts an open escalation case for the brand.
func SeedEscalation(t *testing.T, pool *pgxpool.Pool, brandID uuid.UUID, severe bool) domain.EscalationCase {
	t.Helper()
	ctx := context.Background()

	c := domain.EscalationCase{
		ID:          uuid.New(),
		ComplaintID: uuid.New(),
		BrandID:     brandID,
		EscalatedBy: "moderator",
		Reason:      "unresolved complaint",
		Severe:      severe,
		Status:      domain.EscalationOpen,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO escalation_cases (id, complaint_id, brand_id, escalated_by, reason, severe, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ComplaintID, c.BrandID, c.EscalatedBy, c.Reason, c.Severe, string(c.Status), c.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEscalation insert: %v", err)
	}

	return c
}
