package domain

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to VerificationStatus }{
		{VerificationNotStarted, VerificationPendingDocuments},
		{VerificationPendingDocuments, VerificationPaidPending},
		{VerificationPaidPending, VerificationUnderReview},
		{VerificationUnderReview, VerificationApproved},
		{VerificationUnderReview, VerificationRejected},
		{VerificationUnderReview, VerificationMoreInfo},
		{VerificationMoreInfo, VerificationPendingDocuments},
		{VerificationApproved, VerificationExpired},
	}
	allowedSet := map[[2]VerificationStatus]bool{}
	for _, tr := range allowed {
		allowedSet[[2]VerificationStatus{tr.from, tr.to}] = true
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tr.from, tr.to)
		}
	}

	// Everything outside the table is illegal, including self-loops and
	// anything out of the terminal states.
	all := []VerificationStatus{
		VerificationNotStarted, VerificationPendingDocuments, VerificationPaidPending,
		VerificationUnderReview, VerificationApproved, VerificationRejected,
		VerificationMoreInfo, VerificationExpired,
	}
	for _, from := range all {
		for _, to := range all {
			if allowedSet[[2]VerificationStatus{from, to}] {
				continue
			}
			if CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, want false", from, to)
			}
		}
	}
}

func TestNextStates(t *testing.T) {
	t.Parallel()

	next := NextStates(VerificationUnderReview)
	if len(next) != 3 {
		t.Fatalf("NextStates(UNDER_REVIEW) returned %d states, want 3", len(next))
	}
	if len(NextStates(VerificationRejected)) != 0 {
		t.Error("REJECTED should have no next states")
	}
	if len(NextStates(VerificationExpired)) != 0 {
		t.Error("EXPIRED should have no next states")
	}
}

func TestVerificationRequest_HasAllRequired(t *testing.T) {
	t.Parallel()

	required := []DocumentType{DocumentBusinessRegistration, DocumentDirectorID}

	req := &VerificationRequest{Documents: map[DocumentType]DocumentRecord{
		DocumentBusinessRegistration: {Type: DocumentBusinessRegistration, Status: DocumentPending},
	}}
	if req.HasAllRequired(required) {
		t.Error("missing director_id should fail HasAllRequired")
	}

	req.Documents[DocumentDirectorID] = DocumentRecord{Type: DocumentDirectorID, Status: DocumentRejected}
	if !req.HasAllRequired(required) {
		t.Error("all types uploaded should pass HasAllRequired regardless of review status")
	}
}

func TestVerificationRequest_AllRequiredApproved(t *testing.T) {
	t.Parallel()

	required := []DocumentType{DocumentBusinessRegistration, DocumentDirectorID}

	req := &VerificationRequest{Documents: map[DocumentType]DocumentRecord{
		DocumentBusinessRegistration: {Status: DocumentApproved},
		DocumentDirectorID:           {Status: DocumentPending},
	}}
	if req.AllRequiredApproved(required) {
		t.Error("pending document should fail AllRequiredApproved")
	}

	req.Documents[DocumentDirectorID] = DocumentRecord{Status: DocumentApproved}
	if !req.AllRequiredApproved(required) {
		t.Error("all approved should pass")
	}

	delete(req.Documents, DocumentBusinessRegistration)
	if req.AllRequiredApproved(required) {
		t.Error("missing document should fail even when the rest are approved")
	}
}

func TestVerificationRequest_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		req  VerificationRequest
		want bool
	}{
		{"approved past expiry", VerificationRequest{Status: VerificationApproved, ExpiresAt: &past}, true},
		{"approved before expiry", VerificationRequest{Status: VerificationApproved, ExpiresAt: &future}, false},
		{"approved exactly at expiry", VerificationRequest{Status: VerificationApproved, ExpiresAt: &now}, false},
		{"approved with nil expiry", VerificationRequest{Status: VerificationApproved}, false},
		{"non-approved past expiry", VerificationRequest{Status: VerificationUnderReview, ExpiresAt: &past}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.req.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerificationRequest_SLAClockRunning(t *testing.T) {
	t.Parallel()

	running := []VerificationStatus{VerificationPaidPending, VerificationUnderReview}
	for _, s := range running {
		req := VerificationRequest{Status: s}
		if !req.SLAClockRunning() {
			t.Errorf("%s should have a running clock", s)
		}
	}
	stopped := []VerificationStatus{
		VerificationPendingDocuments, VerificationApproved, VerificationRejected,
		VerificationMoreInfo, VerificationExpired,
	}
	for _, s := range stopped {
		req := VerificationRequest{Status: s}
		if req.SLAClockRunning() {
			t.Errorf("%s should not have a running clock", s)
		}
	}
}

func TestVerificationRequest_SLAStart(t *testing.T) {
	t.Parallel()

	submitted := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	paidLater := submitted.Add(2 * time.Hour)
	paidEarlier := submitted.Add(-time.Hour)

	req := VerificationRequest{SubmittedAt: submitted}
	if got := req.SLAStart(); !got.Equal(submitted) {
		t.Errorf("unpaid request should start from submittedAt, got %v", got)
	}

	req.PaidAt = &paidLater
	if got := req.SLAStart(); !got.Equal(paidLater) {
		t.Errorf("later payment should move the start, got %v", got)
	}

	req.PaidAt = &paidEarlier
	if got := req.SLAStart(); !got.Equal(submitted) {
		t.Errorf("earlier payment must not move the start back, got %v", got)
	}
}

func TestVerificationRequest_HasUploadedDocument(t *testing.T) {
	t.Parallel()

	req := VerificationRequest{}
	if req.HasUploadedDocument() {
		t.Error("empty request should have no documents")
	}
	req.Documents = map[DocumentType]DocumentRecord{
		DocumentProofOfAddress: {Status: DocumentRejected},
	}
	if !req.HasUploadedDocument() {
		t.Error("a rejected document still counts as uploaded")
	}
}
