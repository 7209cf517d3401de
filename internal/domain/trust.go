package domain

import "time"

// RatingSample is one star rating left on a resolved complaint. Samples are
// owned by the rating subsystem and immutable once recorded; the engine only
// reads them.
type RatingSample struct {
	Stars      int
	HasComment bool
	CreatedAt  time.Time
}

// TrustFactors is the presentational decomposition shown next to the public
// score. Each factor is scaled to [0,100]. Factors never feed back into
// Score; the shrinkage formula stays auditable in isolation.
type TrustFactors struct {
	Authenticity float64
	Activity     float64
	Verification float64
}

// Composite collapses the factors into a single 0..100 signal used for risk
// banding on admin dashboards.
func (f TrustFactors) Composite() float64 {
	return (f.Authenticity + f.Activity + f.Verification) / 3
}

// TrustScoreResult is the derived public trust number plus its breakdown.
// Never persisted as a source of truth — always reproducible from the rating
// samples and the verification/activity inputs.
type TrustScoreResult struct {
	Score          float64
	ArithmeticMean float64
	SampleCount    int
	Factors        TrustFactors
	RiskLevel      RiskLevel
}

// ActivitySignal is the complaint subsystem's view of how responsive a brand
// is: the share of complaints with a brand follow-up inside the window.
type ActivitySignal struct {
	ResponseRatio float64
	WindowDays    int
}
