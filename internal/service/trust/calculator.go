// Package trust computes the public trust score for a brand from its rating
// samples, plus the factor breakdown shown alongside it.
package trust

import (
	"fmt"
	"strings"

	"github.com/resolvehub/trustengine-backend/internal/domain"
)

// Compute derives the damped trust score from raw rating samples.
//
// The formula is a Bayesian shrinkage average:
//
//	score = (priorWeight*priorMean + Σ stars) / (priorWeight + n)
//
// A brand with one five-star rating must not outrank a brand with 500
// ratings averaging 4.6; priorWeight acts as that many phantom ratings at
// priorMean, fading as real evidence accumulates. With n = 0 the score is
// exactly priorMean.
//
// Samples with stars outside [1,5] are a contract violation from the caller
// and are rejected, not clamped: out-of-range values indicate upstream
// corruption that averaging would silently hide.
func Compute(samples []domain.RatingSample, priorMean, priorWeight float64) (domain.TrustScoreResult, error) {
	sum := 0
	for i, s := range samples {
		if s.Stars < 1 || s.Stars > 5 {
			return domain.TrustScoreResult{}, domain.NewValidationError(
				"stars", fmt.Sprintf("sample %d: stars %d outside [1,5]", i, s.Stars))
		}
		sum += s.Stars
	}

	n := len(samples)
	result := domain.TrustScoreResult{SampleCount: n}

	if n == 0 {
		result.Score = priorMean
		result.ArithmeticMean = priorMean
		return result, nil
	}

	result.ArithmeticMean = float64(sum) / float64(n)
	result.Score = (priorWeight*priorMean + float64(sum)) / (priorWeight + float64(n))
	return result, nil
}

// FactorInputs carries the independent secondary signals the factor
// decomposition is computed from.
type FactorInputs struct {
	// Samples are the same ratings the score was computed from; the share
	// with an accompanying comment feeds the authenticity factor.
	Samples []domain.RatingSample

	// Activity is the complaint subsystem's responsiveness signal.
	Activity domain.ActivitySignal

	// VerificationStatus is the brand's current (lazily expired) status.
	VerificationStatus domain.VerificationStatus

	// PlanCode is the verification plan, used for the premium tier.
	PlanCode string
}

// Verification tiers. An unverified brand scores 60, a verified one 80, a
// verified brand on a premium plan 100.
const (
	tierUnverified      = 60
	tierVerified        = 80
	tierVerifiedPremium = 100
)

// ComputeFactors derives the presentational factor breakdown, each scaled to
// [0,100]. Factors are a side channel: they never feed back into the score.
func ComputeFactors(in FactorInputs) domain.TrustFactors {
	f := domain.TrustFactors{
		Authenticity: 100,
		Activity:     clamp100(in.Activity.ResponseRatio * 100),
		Verification: tierUnverified,
	}

	if n := len(in.Samples); n > 0 {
		withComment := 0
		for _, s := range in.Samples {
			if s.HasComment {
				withComment++
			}
		}
		f.Authenticity = clamp100(float64(withComment) / float64(n) * 100)
	}

	if in.VerificationStatus == domain.VerificationApproved {
		f.Verification = tierVerified
		if strings.Contains(strings.ToUpper(in.PlanCode), "PREMIUM") {
			f.Verification = tierVerifiedPremium
		}
	}

	return f
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
