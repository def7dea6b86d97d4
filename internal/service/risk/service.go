package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	riskdomain "github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/service/aiplatform"
	"github.com/davidleathers/shadow-automation-backend/internal/service/behavior"
	"github.com/davidleathers/shadow-automation-backend/internal/service/scopes"
)

// aggregator implements the Aggregator interface.
type aggregator struct {
	now func() time.Time
}

// NewAggregator creates a risk aggregator. Each call to Aggregate is
// stateless; instances are safe for concurrent use.
func NewAggregator() Aggregator {
	return &aggregator{now: time.Now}
}

// Aggregate merges the signal results in fixed evaluation order: classifier,
// scopes, behavior, context. Risk factors keep that order; they are never
// re-sorted by magnitude.
func (a *aggregator) Aggregate(automationID uuid.UUID, classifier aiplatform.Result, scopeResult scopes.Result, behavioral *behavior.Result, ctx Context) (*riskdomain.Assessment, error) {
	var (
		factors    []string
		categories []recommendationCategory
		compliance []string
	)

	components := riskdomain.ComponentScores{
		Permission: scopeResult.AggregateScore,
	}
	confidence := ConfidenceBase

	// 1. AI platform classification
	if classifier.Detected {
		if classifier.Provider != aiplatform.ProviderUnknown {
			components.DataAccess += BonusAIProvider
			confidence += ConfidenceAIProvider
			factors = append(factors, fmt.Sprintf(
				"Sends data to AI provider %s (classifier confidence %d%%)",
				classifier.Provider, classifier.Confidence))
		} else {
			components.DataAccess += BonusAIGeneric
			confidence += ConfidenceAIGeneric
			factors = append(factors, fmt.Sprintf(
				"Sends data to an unidentified AI service (classifier confidence %d%%)",
				classifier.Confidence))
		}
		categories = append(categories, recommendAIReview)

		if scopeResult.AggregateScore > 0 {
			compliance = append(compliance,
				"Organizational data accessible to this automation may reach an external AI provider")
		}
	}

	// 2. Scope severity
	if scopeResult.ScopeCount > 0 {
		factors = append(factors, fmt.Sprintf(
			"Granted %d OAuth scopes with aggregate severity %d",
			scopeResult.ScopeCount, scopeResult.AggregateScore))
		if scopeResult.Highest != nil && scopeResult.Highest.Score > 0 {
			factors = append(factors, fmt.Sprintf(
				"Highest-severity scope %s (%s)",
				scopeResult.Highest.ScopeID, scopeResult.Highest.Severity))
		}
		if scopeResult.Excessive {
			factors = append(factors, fmt.Sprintf(
				"Excessive permission footprint (%d scopes)", scopeResult.ScopeCount))
			categories = append(categories, recommendLeastPrivilege)
		}
		if scopeResult.AggregateScore >= riskdomain.ThresholdHigh {
			categories = append(categories, recommendLeastPrivilege)
		}
	}

	// 3. Behavioral signals
	if behavioral != nil {
		confidence += ConfidenceBehavioral
		if behavioral.RapidFire {
			factors = append(factors, fmt.Sprintf(
				"Rapid-fire event timing (%d sub-threshold gaps)", behavioral.RapidFireCount))
		}
		if behavioral.RegularInterval {
			factors = append(factors, fmt.Sprintf(
				"Mechanical posting interval of %s", behavioral.Interval))
		}
		if behavioral.ContentRepetition {
			factors = append(factors, fmt.Sprintf(
				"Repetitive message content (mean similarity %.2f)", behavioral.MeanSimilarity))
		}
		if behavioral.Templated {
			factors = append(factors, "Templated message content with placeholder markers")
		}
		if behavioral.Confidence > BehavioralConfidenceThreshold {
			components.Activity += BonusBehavioral
			categories = append(categories, recommendBotAccount)
		}
	}

	// 4. Contextual flags
	if vendor := matchVendor(ctx.Name, ctx.ClientID); vendor != "" {
		components.DataAccess += BonusVendorMatch
		factors = append(factors, fmt.Sprintf("Built on third-party automation platform %q", vendor))
		categories = append(categories, recommendVendorReview)
	}
	if ctx.LastActivity != nil {
		switch age := a.now().Sub(*ctx.LastActivity); {
		case age < RecencyDay:
			components.Activity += BonusRecentDay
			factors = append(factors, "Active within the last 24 hours")
		case age < RecencyWeek:
			components.Activity += BonusRecentWeek
			factors = append(factors, "Active within the last 7 days")
		}
	}
	switch ctx.Owner {
	case OwnerExternal:
		components.Ownership += BonusOwnerExternal
		factors = append(factors, "Owned by an account outside the organization")
		categories = append(categories, recommendAssignOwner)
	case OwnerServiceAccount:
		components.Ownership += BonusOwnerService
		factors = append(factors, "Owned by a shared service account")
		categories = append(categories, recommendAssignOwner)
	case OwnerUnknown:
		components.Ownership += BonusOwnerUnknown
		factors = append(factors, "No identifiable owner")
		categories = append(categories, recommendAssignOwner)
	}

	assessment, err := riskdomain.NewAssessment(automationID, components, factors,
		confidence, riskdomain.AssessorSystem)
	if err != nil {
		return nil, err
	}
	assessment.ComplianceIssues = compliance
	assessment.Recommendations = recommendationsFor(categories)
	return assessment, nil
}

// matchVendor returns the first known automation vendor whose name appears in
// the automation's name or client identifier.
func matchVendor(name, clientID string) string {
	haystack := strings.ToLower(name + " " + clientID)
	for _, vendor := range knownAutomationVendors {
		if strings.Contains(haystack, vendor) {
			return vendor
		}
	}
	return ""
}
