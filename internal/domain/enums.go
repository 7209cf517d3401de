package domain

// VerificationStatus represents the lifecycle state of a brand's
// verification request.
type VerificationStatus string

const (
	VerificationNotStarted       VerificationStatus = "NOT_STARTED"
	VerificationPendingDocuments VerificationStatus = "PENDING_DOCUMENTS"
	VerificationPaidPending      VerificationStatus = "PAID_PENDING"
	VerificationUnderReview      VerificationStatus = "UNDER_REVIEW"
	VerificationApproved         VerificationStatus = "APPROVED"
	VerificationRejected         VerificationStatus = "REJECTED"
	VerificationMoreInfo         VerificationStatus = "MORE_INFO"
	VerificationExpired          VerificationStatus = "EXPIRED"
)

func (s VerificationStatus) String() string { return string(s) }

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationNotStarted, VerificationPendingDocuments, VerificationPaidPending,
		VerificationUnderReview, VerificationApproved, VerificationRejected,
		VerificationMoreInfo, VerificationExpired:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits a fresh request to be opened.
func (s VerificationStatus) IsTerminal() bool {
	return s == VerificationRejected || s == VerificationExpired
}

// DocumentType identifies one of the documents required for verification.
type DocumentType string

const (
	DocumentBusinessRegistration DocumentType = "business_registration"
	DocumentDirectorID           DocumentType = "director_id"
	DocumentProofOfAddress       DocumentType = "proof_of_address"
)

func (t DocumentType) String() string { return string(t) }

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentBusinessRegistration, DocumentDirectorID, DocumentProofOfAddress:
		return true
	}
	return false
}

// DocumentStatus is the review status of a single uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

func (s DocumentStatus) String() string { return string(s) }

func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentPending, DocumentApproved, DocumentRejected:
		return true
	}
	return false
}

// AdminDecision is the verdict an admin records on an UNDER_REVIEW request.
type AdminDecision string

const (
	DecisionApprove  AdminDecision = "APPROVE"
	DecisionReject   AdminDecision = "REJECT"
	DecisionMoreInfo AdminDecision = "MORE_INFO"
)

func (d AdminDecision) String() string { return string(d) }

func (d AdminDecision) IsValid() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionMoreInfo:
		return true
	}
	return false
}

// EnforcementType classifies a governance action against a brand.
type EnforcementType string

const (
	EnforcementWarning     EnforcementType = "WARNING"
	EnforcementInfoRequest EnforcementType = "INFO_REQUEST"
	EnforcementSuspension  EnforcementType = "SUSPENSION"
	EnforcementBan         EnforcementType = "BAN"
)

func (t EnforcementType) String() string { return string(t) }

func (t EnforcementType) IsValid() bool {
	switch t {
	case EnforcementWarning, EnforcementInfoRequest, EnforcementSuspension, EnforcementBan:
		return true
	}
	return false
}

// Severity ordering: a later entry supersedes an earlier one. BAN never
// lapses automatically.
var enforcementSeverity = map[EnforcementType]int{
	EnforcementWarning:     1,
	EnforcementInfoRequest: 2,
	EnforcementSuspension:  3,
	EnforcementBan:         4,
}

// Severity returns the relative weight of the action type (higher is worse).
func (t EnforcementType) Severity() int { return enforcementSeverity[t] }

// EscalationStatus is the lifecycle state of an escalation case. Cases are
// owned by the complaint subsystem; the engine only reads them.
type EscalationStatus string

const (
	EscalationOpen     EscalationStatus = "OPEN"
	EscalationResolved EscalationStatus = "RESOLVED"
)

func (s EscalationStatus) String() string { return string(s) }

func (s EscalationStatus) IsValid() bool {
	return s == EscalationOpen || s == EscalationResolved
}

// RiskLevel buckets the composite factor score for admin dashboards.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

func (r RiskLevel) String() string { return string(r) }

// RiskLevelFor maps a composite 0..100 score onto a risk band.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 60:
		return RiskMedium
	case score >= 40:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// TargetType identifies the kind of entity an audit entry refers to.
type TargetType string

const (
	TargetVerificationRequest TargetType = "VERIFICATION_REQUEST"
	TargetEnforcementAction   TargetType = "ENFORCEMENT_ACTION"
	TargetBrand               TargetType = "BRAND"
)

func (t TargetType) String() string { return string(t) }

func (t TargetType) IsValid() bool {
	switch t {
	case TargetVerificationRequest, TargetEnforcementAction, TargetBrand:
		return true
	}
	return false
}
