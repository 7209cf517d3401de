package config

import (
	"fmt"
	"slices"
	"strings"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}
var validLogFormats = []string{"json", "text"}

var knownDocumentTypes = []string{"business_registration", "director_id", "proof_of_address"}

// Validate checks semantic constraints that tags cannot express.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}

	if c.Trust.PriorMean < 1 || c.Trust.PriorMean > 5 {
		return fmt.Errorf("trust.prior_mean: %v outside [1,5]", c.Trust.PriorMean)
	}
	if c.Trust.PriorWeight < 0 {
		return fmt.Errorf("trust.prior_weight: must be >= 0, got %v", c.Trust.PriorWeight)
	}
	if c.Trust.ActivityWindowDays <= 0 {
		return fmt.Errorf("trust.activity_window_days: must be positive, got %d", c.Trust.ActivityWindowDays)
	}

	if c.Verification.SLAWindowHours <= 0 {
		return fmt.Errorf("verification.sla_window_hours: must be positive, got %d", c.Verification.SLAWindowHours)
	}
	if c.Verification.ExpiryDays <= 0 {
		return fmt.Errorf("verification.expiry_days: must be positive, got %d", c.Verification.ExpiryDays)
	}
	if len(c.Verification.RequiredDocuments) == 0 {
		return fmt.Errorf("verification.required_documents: must not be empty")
	}
	for _, d := range c.Verification.RequiredDocuments {
		if !slices.Contains(knownDocumentTypes, d) {
			return fmt.Errorf("verification.required_documents: unknown type %q", d)
		}
	}

	if c.Fraud.RejectionThreshold <= 0 {
		return fmt.Errorf("fraud.rejection_threshold: must be positive, got %d", c.Fraud.RejectionThreshold)
	}
	if c.Fraud.WindowDays <= 0 {
		return fmt.Errorf("fraud.window_days: must be positive, got %d", c.Fraud.WindowDays)
	}

	if c.Governance.WarningThreshold <= 0 {
		return fmt.Errorf("governance.warning_threshold: must be positive, got %d", c.Governance.WarningThreshold)
	}
	if c.Governance.EscalationWindowDays <= 0 {
		return fmt.Errorf("governance.escalation_window_days: must be positive, got %d", c.Governance.EscalationWindowDays)
	}
	if c.Governance.SuspensionAfterWarnings <= 0 {
		return fmt.Errorf("governance.suspension_after_warnings: must be positive, got %d", c.Governance.SuspensionAfterWarnings)
	}
	if c.Governance.SuspensionDays <= 0 {
		return fmt.Errorf("governance.suspension_days: must be positive, got %d", c.Governance.SuspensionDays)
	}

	return nil
}
