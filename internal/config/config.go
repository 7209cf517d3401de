package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Log          LogConfig          `yaml:"log"`
	Trust        TrustConfig        `yaml:"trust"`
	Verification VerificationConfig `yaml:"verification"`
	Fraud        FraudConfig        `yaml:"fraud"`
	Governance   GovernanceConfig   `yaml:"governance"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// TrustConfig holds the trust score tuning constants.
//
// PriorWeight is the equivalent number of prior observations the shrinkage
// formula assumes; PriorMean is the neutral prior a low-sample brand is
// pulled toward. The product copy ("damped by sample size") does not pin the
// exact constants, so they live here rather than inline in the calculator.
type TrustConfig struct {
	PriorMean          float64 `yaml:"prior_mean"           env:"TRUST_PRIOR_MEAN"           env-default:"3.5"`
	PriorWeight        float64 `yaml:"prior_weight"         env:"TRUST_PRIOR_WEIGHT"         env-default:"5.0"`
	ActivityWindowDays int     `yaml:"activity_window_days" env:"TRUST_ACTIVITY_WINDOW_DAYS" env-default:"30"`
}

// VerificationConfig holds verification lifecycle settings.
type VerificationConfig struct {
	SLAWindowHours int `yaml:"sla_window_hours" env:"VERIFICATION_SLA_WINDOW_HOURS" env-default:"48"`
	ExpiryDays     int `yaml:"expiry_days"      env:"VERIFICATION_EXPIRY_DAYS"      env-default:"365"`

	// RequiredDocuments lists the document types a request must carry before
	// it can be approved.
	RequiredDocuments []string `yaml:"required_documents" env:"VERIFICATION_REQUIRED_DOCUMENTS" env-separator:"," env-default:"business_registration,director_id,proof_of_address"`

	// RetainDocumentsOnExpiry keeps approved documents when a verification
	// expires so renewal skips re-upload. Off by default: expiry requires
	// full resubmission.
	RetainDocumentsOnExpiry bool `yaml:"retain_documents_on_expiry" env:"VERIFICATION_RETAIN_DOCUMENTS_ON_EXPIRY" env-default:"false"`
}

// FraudConfig holds fraud signal detection settings.
type FraudConfig struct {
	RejectionThreshold int `yaml:"rejection_threshold" env:"FRAUD_REJECTION_THRESHOLD" env-default:"3"`
	WindowDays         int `yaml:"window_days"         env:"FRAUD_WINDOW_DAYS"         env-default:"180"`
}

// GovernanceConfig holds enforcement policy thresholds.
type GovernanceConfig struct {
	WarningThreshold        int `yaml:"warning_threshold"         env:"GOVERNANCE_WARNING_THRESHOLD"         env-default:"3"`
	EscalationWindowDays    int `yaml:"escalation_window_days"    env:"GOVERNANCE_ESCALATION_WINDOW_DAYS"    env-default:"30"`
	SuspensionAfterWarnings int `yaml:"suspension_after_warnings" env:"GOVERNANCE_SUSPENSION_AFTER_WARNINGS" env-default:"2"`
	SuspensionDays          int `yaml:"suspension_days"           env:"GOVERNANCE_SUSPENSION_DAYS"           env-default:"30"`
}
