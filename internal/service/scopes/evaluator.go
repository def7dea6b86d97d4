package scopes

import (
	"context"
	"sort"
	"strings"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/scope"
)

// ScopeRisk is the evaluated severity of one granted scope.
type ScopeRisk struct {
	ScopeID     string
	Score       int
	Severity    scope.Severity
	Entry       *scope.LibraryEntry // nil when the fallback table matched
	FromLibrary bool
}

// Result is the evaluated risk of a full scope grant.
type Result struct {
	PerScope       []ScopeRisk
	AggregateScore int
	Highest        *ScopeRisk
	ScopeCount     int
	Excessive      bool
	DataTypes      []string
}

// Config tunes the excessive-permission signal.
type Config struct {
	ExcessiveScopeThreshold int
	ExcessiveScopePenalty   int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ExcessiveScopeThreshold: DefaultExcessiveScopeThreshold,
		ExcessiveScopePenalty:   DefaultExcessiveScopePenalty,
	}
}

// fallbackRule maps a substring class to a severity weight. Order matters: the
// identity class sits above the data class so userinfo.email is not scored as
// a mailbox grant.
type fallbackRule struct {
	patterns []string
	score    int
}

var fallbackRules = []fallbackRule{
	{patterns: []string{"admin", "directory"}, score: WeightAdminClass},
	{patterns: []string{"security", "audit"}, score: WeightSecurityClass},
	{patterns: []string{"userinfo", "openid", "profile"}, score: WeightIdentityClass},
	{patterns: []string{"write", "delete", "manage", "full"}, score: WeightMutationClass},
	{patterns: []string{"drive", "gmail", "mail", "calendar", "contacts", "files", "channels", "repo"}, score: WeightDataClass},
}

// Evaluator scores OAuth scope grants against the reference library with a
// pattern fallback. Evaluation is pure: identical scope sets (in any order)
// yield identical results.
type Evaluator struct {
	reader scope.Reader
	cfg    Config
}

// NewEvaluator constructs an evaluator. A nil reader skips library lookups and
// scores everything through the fallback table.
func NewEvaluator(reader scope.Reader, cfg Config) *Evaluator {
	if cfg.ExcessiveScopeThreshold <= 0 {
		cfg.ExcessiveScopeThreshold = DefaultExcessiveScopeThreshold
	}
	if cfg.ExcessiveScopePenalty <= 0 {
		cfg.ExcessiveScopePenalty = DefaultExcessiveScopePenalty
	}
	return &Evaluator{reader: reader, cfg: cfg}
}

// Evaluate scores a scope grant. Degenerate input (no scopes) returns a zero
// result, never an error; library lookup failures degrade to the fallback
// table for the affected scope.
func (e *Evaluator) Evaluate(ctx context.Context, scopeIDs []string, platform automation.Platform) Result {
	unique := dedupe(scopeIDs)
	if len(unique) == 0 {
		return Result{}
	}

	result := Result{
		PerScope:   make([]ScopeRisk, 0, len(unique)),
		ScopeCount: len(unique),
	}

	dataTypes := make(map[string]struct{})
	total := 0
	for _, id := range unique {
		sr := e.evaluateOne(ctx, id, platform)
		if sr.Entry != nil {
			for _, dt := range sr.Entry.DataTypes {
				dataTypes[dt] = struct{}{}
			}
		}
		total += sr.Score
		result.PerScope = append(result.PerScope, sr)
	}

	// highest-severity scope; ties resolve to the lexicographically smaller
	// scope id so the pick is deterministic
	highest := 0
	for i := 1; i < len(result.PerScope); i++ {
		if result.PerScope[i].Score > result.PerScope[highest].Score {
			highest = i
		}
	}
	result.Highest = &result.PerScope[highest]

	if result.ScopeCount > e.cfg.ExcessiveScopeThreshold {
		total += e.cfg.ExcessiveScopePenalty
		result.Excessive = true
	}
	result.AggregateScore = risk.ClampScore(total)

	for dt := range dataTypes {
		result.DataTypes = append(result.DataTypes, dt)
	}
	sort.Strings(result.DataTypes)

	return result
}

func (e *Evaluator) evaluateOne(ctx context.Context, scopeID string, platform automation.Platform) ScopeRisk {
	if e.reader != nil {
		entry, err := e.reader.Lookup(ctx, scopeID, platform)
		if err == nil && entry != nil {
			return ScopeRisk{
				ScopeID:     scopeID,
				Score:       risk.ClampScore(entry.Score),
				Severity:    entry.Severity,
				Entry:       entry,
				FromLibrary: true,
			}
		}
	}

	score := fallbackScore(scopeID)
	return ScopeRisk{
		ScopeID:  scopeID,
		Score:    score,
		Severity: severityForScore(score),
	}
}

func fallbackScore(scopeID string) int {
	lower := strings.ToLower(scopeID)
	for _, rule := range fallbackRules {
		for _, p := range rule.patterns {
			if strings.Contains(lower, p) {
				return rule.score
			}
		}
	}
	return WeightUnknownBaseline
}

func severityForScore(score int) scope.Severity {
	switch risk.LevelForScore(score) {
	case risk.LevelCritical:
		return scope.SeverityCritical
	case risk.LevelHigh:
		return scope.SeverityHigh
	case risk.LevelMedium:
		return scope.SeverityMedium
	default:
		return scope.SeverityLow
	}
}

// dedupe drops duplicates and sorts, making evaluation invariant under
// permutation of the input list.
func dedupe(scopeIDs []string) []string {
	seen := make(map[string]struct{}, len(scopeIDs))
	out := make([]string, 0, len(scopeIDs))
	for _, id := range scopeIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
