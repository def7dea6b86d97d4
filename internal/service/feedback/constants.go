package feedback

import "time"

// DefaultRetention is how long a resolved record must age before archive.
const DefaultRetention = 90 * 24 * time.Hour

// Training weight mapping. These are fixed, documented constants, not learned
// values.
const (
	// WeightFull applies to direct detection verdicts
	WeightFull = 1.0

	// WeightRiskOverride applies to risk-level overrides, which confirm the
	// detection but dispute the scoring
	WeightRiskOverride = 0.5

	// SentimentNegativeMultiplier upweights negative feedback so correction
	// signal is not drowned out by confirmations
	SentimentNegativeMultiplier = 1.2

	// DefaultConfidenceFraction stands in when a submitter states no
	// confidence
	DefaultConfidenceFraction = 0.8
)
