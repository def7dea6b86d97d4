package behavior

import (
	"sort"
	"strings"
	"time"
)

// Event is one timestamped action by an actor, with optional message content
// for repetition analysis.
type Event struct {
	Timestamp time.Time
	Content   string
}

// Result carries the automation-likelihood signals for one actor's window.
// The zero value means "no signal".
type Result struct {
	RapidFire      bool
	RapidFireCount int

	RegularInterval bool
	Interval        time.Duration

	ContentRepetition bool
	MeanSimilarity    float64
	Templated         bool

	// Confidence is the capped weighted sum of the signals above, 0..0.95.
	Confidence float64
}

// Signal weights and caps. These are part of the detector contract: tests
// assert the exact composite values.
const (
	WeightRapidFire       = 0.40
	WeightRegularInterval = 0.35
	WeightContent         = 0.25
	ConfidenceCap         = 0.95
)

// Config tunes the timing heuristics.
type Config struct {
	// RapidFireGap is the inter-event gap under which an event pair counts as
	// rapid fire.
	RapidFireGap time.Duration
	// RapidFireCount is the number of sub-threshold gaps above which the
	// signal trips.
	RapidFireCount int
	// IntervalDominance is the fraction of gaps one rounded bucket must hold
	// for the regular-interval signal.
	IntervalDominance float64
	// SimilarityThreshold is the mean pairwise Jaccard similarity above which
	// content repetition trips.
	SimilarityThreshold float64
	// MinEvents is the floor below which the detector returns no signal
	// rather than guessing from degenerate input.
	MinEvents int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		RapidFireGap:        100 * time.Millisecond,
		RapidFireCount:      3,
		IntervalDominance:   0.60,
		SimilarityThreshold: 0.70,
		MinEvents:           3,
	}
}

// templateMarkers are literal placeholder syntaxes that indicate templated
// message content.
var templateMarkers = []string{"{{", "${", "<%", "%s", "{0}"}

// minGapsForInterval is the gap count required before the interval histogram
// is trusted.
const minGapsForInterval = 4

// Detector computes behavioral automation signals from a time-ordered event
// stream. It is stateless; each call stands alone.
type Detector struct {
	cfg Config
}

// NewDetector constructs a detector, filling zero config fields with defaults.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.RapidFireGap <= 0 {
		cfg.RapidFireGap = def.RapidFireGap
	}
	if cfg.RapidFireCount <= 0 {
		cfg.RapidFireCount = def.RapidFireCount
	}
	if cfg.IntervalDominance <= 0 {
		cfg.IntervalDominance = def.IntervalDominance
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = def.SimilarityThreshold
	}
	if cfg.MinEvents <= 0 {
		cfg.MinEvents = def.MinEvents
	}
	return &Detector{cfg: cfg}
}

// Detect analyzes one actor's events. Fewer than the configured minimum
// returns the zero result; it never fails.
func (d *Detector) Detect(events []Event) Result {
	if len(events) < d.cfg.MinEvents {
		return Result{}
	}

	ordered := append([]Event(nil), events...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	gaps := make([]time.Duration, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		gaps = append(gaps, ordered[i].Timestamp.Sub(ordered[i-1].Timestamp))
	}

	var result Result
	result.RapidFire, result.RapidFireCount = d.detectRapidFire(gaps)
	result.RegularInterval, result.Interval = d.detectRegularInterval(gaps)
	result.ContentRepetition, result.MeanSimilarity, result.Templated = d.detectContentRepetition(ordered)

	confidence := 0.0
	if result.RapidFire {
		confidence += WeightRapidFire
	}
	if result.RegularInterval {
		confidence += WeightRegularInterval
	}
	if result.ContentRepetition {
		confidence += WeightContent
	}
	if confidence > ConfidenceCap {
		confidence = ConfidenceCap
	}
	result.Confidence = confidence

	return result
}

func (d *Detector) detectRapidFire(gaps []time.Duration) (bool, int) {
	count := 0
	for _, g := range gaps {
		if g < d.cfg.RapidFireGap {
			count++
		}
	}
	return count > d.cfg.RapidFireCount, count
}

// detectRegularInterval rounds gaps to the nearest second and flags when one
// bucket dominates. The zero-second bucket is excluded; sub-second spacing is
// rapid-fire territory.
func (d *Detector) detectRegularInterval(gaps []time.Duration) (bool, time.Duration) {
	if len(gaps) < minGapsForInterval {
		return false, 0
	}

	histogram := make(map[int64]int)
	for _, g := range gaps {
		bucket := int64(g.Round(time.Second) / time.Second)
		histogram[bucket]++
	}

	var topBucket int64
	topCount := 0
	for bucket, count := range histogram {
		if bucket == 0 {
			continue
		}
		if count > topCount || (count == topCount && bucket < topBucket) {
			topBucket = bucket
			topCount = count
		}
	}

	if topCount > 0 && float64(topCount) >= d.cfg.IntervalDominance*float64(len(gaps)) {
		return true, time.Duration(topBucket) * time.Second
	}
	return false, 0
}

func (d *Detector) detectContentRepetition(events []Event) (bool, float64, bool) {
	tokenSets := make([]map[string]struct{}, 0, len(events))
	templated := false
	for _, ev := range events {
		if strings.TrimSpace(ev.Content) == "" {
			continue
		}
		for _, marker := range templateMarkers {
			if strings.Contains(ev.Content, marker) {
				templated = true
				break
			}
		}
		tokenSets = append(tokenSets, tokenize(ev.Content))
	}
	if len(tokenSets) < 2 {
		return false, 0, templated
	}

	sum := 0.0
	pairs := 0
	for i := 0; i < len(tokenSets); i++ {
		for j := i + 1; j < len(tokenSets); j++ {
			sum += jaccard(tokenSets[i], tokenSets[j])
			pairs++
		}
	}
	mean := sum / float64(pairs)
	return mean > d.cfg.SimilarityThreshold, mean, templated
}

func tokenize(text string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
