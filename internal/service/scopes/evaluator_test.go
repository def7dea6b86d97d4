package scopes

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/scope"
)

// stubReader serves a fixed in-memory scope library.
type stubReader struct {
	entries map[string]*scope.LibraryEntry
}

func (r *stubReader) Lookup(_ context.Context, scopeID string, _ automation.Platform) (*scope.LibraryEntry, error) {
	if e, ok := r.entries[scopeID]; ok {
		return e, nil
	}
	return nil, errors.ErrScopeNotFound
}

func TestEvaluate_EmptyInput(t *testing.T) {
	e := NewEvaluator(nil, DefaultConfig())

	result := e.Evaluate(context.Background(), nil, automation.PlatformGoogle)
	assert.Equal(t, 0, result.AggregateScore)
	assert.Nil(t, result.Highest)
	assert.Empty(t, result.PerScope)
}

func TestEvaluate_FallbackTable(t *testing.T) {
	e := NewEvaluator(nil, DefaultConfig())
	ctx := context.Background()

	tests := []struct {
		scopeID string
		want    int
	}{
		{"admin.directory.read", WeightAdminClass},
		{"auditlogs.read", WeightSecurityClass},
		{"userinfo.email", WeightIdentityClass},
		{"spreadsheets.write", WeightMutationClass},
		{"drive.readonly", WeightDataClass},
		{"gmail.readonly", WeightDataClass},
		{"some.obscure.scope", WeightUnknownBaseline},
	}
	for _, tt := range tests {
		t.Run(tt.scopeID, func(t *testing.T) {
			result := e.Evaluate(ctx, []string{tt.scopeID}, automation.PlatformGoogle)
			require.Len(t, result.PerScope, 1)
			assert.Equal(t, tt.want, result.PerScope[0].Score)
			assert.False(t, result.PerScope[0].FromLibrary)
		})
	}
}

func TestEvaluate_ScenarioAdminPlusDrive(t *testing.T) {
	// admin.directory.read + drive.readonly on google lands in [50,70)
	e := NewEvaluator(nil, DefaultConfig())

	result := e.Evaluate(context.Background(),
		[]string{"admin.directory.read", "drive.readonly"}, automation.PlatformGoogle)

	assert.GreaterOrEqual(t, result.AggregateScore, 50)
	assert.Less(t, result.AggregateScore, 70)
	require.NotNil(t, result.Highest)
	assert.Equal(t, "admin.directory.read", result.Highest.ScopeID)
}

func TestEvaluate_LibraryPreferredOverFallback(t *testing.T) {
	reader := &stubReader{entries: map[string]*scope.LibraryEntry{
		"drive.readonly": {
			ScopeID:   "drive.readonly",
			Platform:  automation.PlatformGoogle,
			Score:     60,
			Severity:  scope.SeverityHigh,
			DataTypes: []string{"documents", "spreadsheets"},
		},
	}}
	e := NewEvaluator(reader, DefaultConfig())

	result := e.Evaluate(context.Background(),
		[]string{"drive.readonly", "unknown.scope"}, automation.PlatformGoogle)

	require.Len(t, result.PerScope, 2)
	byID := map[string]ScopeRisk{}
	for _, sr := range result.PerScope {
		byID[sr.ScopeID] = sr
	}
	assert.Equal(t, 60, byID["drive.readonly"].Score)
	assert.True(t, byID["drive.readonly"].FromLibrary)
	assert.Equal(t, WeightUnknownBaseline, byID["unknown.scope"].Score)
	assert.Equal(t, []string{"documents", "spreadsheets"}, result.DataTypes)
}

func TestEvaluate_PermutationInvariance(t *testing.T) {
	e := NewEvaluator(nil, DefaultConfig())
	ctx := context.Background()

	scopeIDs := []string{
		"admin.directory.read", "drive.readonly", "gmail.readonly",
		"userinfo.email", "calendar.events", "some.unknown.scope",
	}
	baseline := e.Evaluate(ctx, scopeIDs, automation.PlatformGoogle)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), scopeIDs...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		result := e.Evaluate(ctx, shuffled, automation.PlatformGoogle)
		assert.Equal(t, baseline, result)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := NewEvaluator(nil, DefaultConfig())
	ctx := context.Background()
	scopeIDs := []string{"drive.readonly", "admin.directory.read"}

	first := e.Evaluate(ctx, scopeIDs, automation.PlatformGoogle)
	second := e.Evaluate(ctx, scopeIDs, automation.PlatformGoogle)
	assert.Equal(t, first, second)
}

func TestEvaluate_AggregateBounds(t *testing.T) {
	e := NewEvaluator(nil, DefaultConfig())
	ctx := context.Background()

	// many high-weight scopes saturate at 100
	many := []string{
		"admin.one", "admin.two", "admin.three", "admin.four",
		"admin.five", "admin.six", "admin.seven", "admin.eight",
	}
	result := e.Evaluate(ctx, many, automation.PlatformGoogle)
	assert.Equal(t, 100, result.AggregateScore)

	// a single baseline scope stays low but nonzero
	low := e.Evaluate(ctx, []string{"zzz"}, automation.PlatformGoogle)
	assert.Greater(t, low.AggregateScore, 0)
	assert.LessOrEqual(t, low.AggregateScore, 100)
}

func TestEvaluate_ExcessiveScopePenalty(t *testing.T) {
	cfg := Config{ExcessiveScopeThreshold: 3, ExcessiveScopePenalty: 15}
	e := NewEvaluator(nil, cfg)
	ctx := context.Background()

	under := e.Evaluate(ctx, []string{"s1", "s2", "s3"}, automation.PlatformSlack)
	assert.False(t, under.Excessive)
	assert.Equal(t, 3*WeightUnknownBaseline, under.AggregateScore)

	over := e.Evaluate(ctx, []string{"s1", "s2", "s3", "s4"}, automation.PlatformSlack)
	assert.True(t, over.Excessive)
	assert.Equal(t, 4*WeightUnknownBaseline+15, over.AggregateScore)
}

func TestEvaluate_DuplicatesCollapsed(t *testing.T) {
	e := NewEvaluator(nil, DefaultConfig())
	ctx := context.Background()

	once := e.Evaluate(ctx, []string{"drive.readonly"}, automation.PlatformGoogle)
	thrice := e.Evaluate(ctx, []string{"drive.readonly", "drive.readonly", "drive.readonly"}, automation.PlatformGoogle)
	assert.Equal(t, once, thrice)
}
