package risk

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
	riskdomain "github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/service/aiplatform"
	"github.com/davidleathers/shadow-automation-backend/internal/service/behavior"
	"github.com/davidleathers/shadow-automation-backend/internal/service/scopes"
)

func evaluateScopes(t *testing.T, scopeIDs ...string) scopes.Result {
	t.Helper()
	e := scopes.NewEvaluator(nil, scopes.DefaultConfig())
	return e.Evaluate(context.Background(), scopeIDs, automation.PlatformGoogle)
}

func TestAggregate_AIBonusOutweighsLowScopes(t *testing.T) {
	// a detected openai classification over one low-severity scope still
	// lands at least high
	agg := NewAggregator()

	classifier := aiplatform.Result{
		Detected:   true,
		Provider:   aiplatform.ProviderOpenAI,
		Confidence: 95,
	}
	scopeResult := evaluateScopes(t, "userinfo.email")

	assessment, err := agg.Aggregate(uuid.New(), classifier, scopeResult, nil, Context{})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, assessment.Score, riskdomain.ThresholdHigh)
	assert.Contains(t, []riskdomain.Level{riskdomain.LevelHigh, riskdomain.LevelCritical}, assessment.Level)
}

func TestAggregate_ScoreMatchesComponents(t *testing.T) {
	agg := NewAggregator()

	recent := time.Now().Add(-2 * time.Hour)
	behavioral := &behavior.Result{RapidFire: true, RapidFireCount: 8, Confidence: 0.75}

	assessment, err := agg.Aggregate(uuid.New(),
		aiplatform.Result{Detected: true, Provider: aiplatform.ProviderAnthropic, Confidence: 95},
		evaluateScopes(t, "admin.directory.read", "drive.readonly"),
		behavioral,
		Context{Name: "Zapier Bridge", LastActivity: &recent, Owner: OwnerServiceAccount})
	require.NoError(t, err)

	assert.Equal(t, riskdomain.ClampScore(assessment.Components.Sum()), assessment.Score)
	assert.Equal(t, riskdomain.LevelForScore(assessment.Score), assessment.Level)

	assert.Equal(t, 65, assessment.Components.Permission)
	assert.Equal(t, BonusAIProvider+BonusVendorMatch, assessment.Components.DataAccess)
	assert.Equal(t, BonusBehavioral+BonusRecentDay, assessment.Components.Activity)
	assert.Equal(t, BonusOwnerService, assessment.Components.Ownership)
	assert.Equal(t, 100, assessment.Score)
	assert.Equal(t, riskdomain.LevelCritical, assessment.Level)
}

func TestAggregate_FactorOrderFollowsEvaluation(t *testing.T) {
	agg := NewAggregator()

	recent := time.Now().Add(-3 * 24 * time.Hour)
	behavioral := &behavior.Result{RegularInterval: true, Interval: 30 * time.Second, Confidence: 0.35}

	assessment, err := agg.Aggregate(uuid.New(),
		aiplatform.Result{Detected: true, Provider: aiplatform.ProviderUnknown, Confidence: 60},
		evaluateScopes(t, "drive.readonly"),
		behavioral,
		Context{Name: "n8n flow", LastActivity: &recent, Owner: OwnerUnknown})
	require.NoError(t, err)

	require.Len(t, assessment.Factors, 7)
	assert.Contains(t, assessment.Factors[0], "unidentified AI service")
	assert.Contains(t, assessment.Factors[1], "OAuth scopes")
	assert.Contains(t, assessment.Factors[2], "Highest-severity scope")
	assert.Contains(t, assessment.Factors[3], "Mechanical posting interval")
	assert.Contains(t, assessment.Factors[4], "n8n")
	assert.Contains(t, assessment.Factors[5], "last 7 days")
	assert.Contains(t, assessment.Factors[6], "No identifiable owner")
}

func TestAggregate_GenericAIHalfBonus(t *testing.T) {
	agg := NewAggregator()

	specific, err := agg.Aggregate(uuid.New(),
		aiplatform.Result{Detected: true, Provider: aiplatform.ProviderOpenAI, Confidence: 95},
		scopes.Result{}, nil, Context{})
	require.NoError(t, err)

	generic, err := agg.Aggregate(uuid.New(),
		aiplatform.Result{Detected: true, Provider: aiplatform.ProviderUnknown, Confidence: 60},
		scopes.Result{}, nil, Context{})
	require.NoError(t, err)

	assert.Equal(t, BonusAIProvider, specific.Components.DataAccess)
	assert.Equal(t, BonusAIGeneric, generic.Components.DataAccess)
}

func TestAggregate_BehavioralBonusGated(t *testing.T) {
	agg := NewAggregator()

	below := &behavior.Result{RapidFire: true, Confidence: 0.40}
	above := &behavior.Result{RapidFire: true, RegularInterval: true, Confidence: 0.75}

	weak, err := agg.Aggregate(uuid.New(), aiplatform.Result{}, scopes.Result{}, below, Context{})
	require.NoError(t, err)
	strong, err := agg.Aggregate(uuid.New(), aiplatform.Result{}, scopes.Result{}, above, Context{})
	require.NoError(t, err)

	assert.Equal(t, 0, weak.Components.Activity)
	assert.Equal(t, BonusBehavioral, strong.Components.Activity)
}

func TestAggregate_MissingBehavioralDataLowersConfidence(t *testing.T) {
	agg := NewAggregator()
	classifier := aiplatform.Result{Detected: true, Provider: aiplatform.ProviderOpenAI, Confidence: 95}

	with, err := agg.Aggregate(uuid.New(), classifier, scopes.Result{}, &behavior.Result{}, Context{})
	require.NoError(t, err)
	without, err := agg.Aggregate(uuid.New(), classifier, scopes.Result{}, nil, Context{})
	require.NoError(t, err)

	assert.Greater(t, with.Confidence, without.Confidence)
}

func TestAggregate_NoSignals(t *testing.T) {
	agg := NewAggregator()

	assessment, err := agg.Aggregate(uuid.New(), aiplatform.Result{}, scopes.Result{}, nil, Context{})
	require.NoError(t, err)

	assert.Equal(t, 0, assessment.Score)
	assert.Equal(t, riskdomain.LevelLow, assessment.Level)
	assert.Empty(t, assessment.Factors)
	assert.Empty(t, assessment.Recommendations)
}

func TestAggregate_RecommendationsDeduplicated(t *testing.T) {
	agg := NewAggregator()

	// excessive scopes and high aggregate both map to least-privilege; it
	// must appear once
	cfg := scopes.Config{ExcessiveScopeThreshold: 2, ExcessiveScopePenalty: 15}
	e := scopes.NewEvaluator(nil, cfg)
	scopeResult := e.Evaluate(context.Background(),
		[]string{"admin.a", "admin.b", "admin.c"}, automation.PlatformGoogle)

	assessment, err := agg.Aggregate(uuid.New(), aiplatform.Result{}, scopeResult, nil, Context{})
	require.NoError(t, err)

	count := 0
	for _, rec := range assessment.Recommendations {
		if rec == "Reduce the OAuth grant to least-privilege scopes" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAggregate_ThresholdTableIsCanonical(t *testing.T) {
	agg := NewAggregator()

	// sweep a range of scope severities and check level always agrees with
	// the canonical table
	for _, scopeIDs := range [][]string{
		{"zzz"},
		{"userinfo.email"},
		{"drive.readonly"},
		{"admin.directory.read", "drive.readonly"},
		{"admin.a", "admin.b", "admin.c"},
	} {
		assessment, err := agg.Aggregate(uuid.New(), aiplatform.Result{},
			evaluateScopes(t, scopeIDs...), nil, Context{})
		require.NoError(t, err)
		assert.Equal(t, riskdomain.LevelForScore(assessment.Score), assessment.Level)
	}
}

func TestMatchVendor(t *testing.T) {
	assert.Equal(t, "zapier", matchVendor("Zapier Sheets Sync", ""))
	assert.Equal(t, "n8n", matchVendor("", "n8n-cloud-client"))
	assert.Equal(t, "", matchVendor("Internal Reporter", "client-1"))
}
