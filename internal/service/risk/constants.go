package risk

import "time"

// Flat score bonuses. These are configuration owned by the aggregator, not
// values derived from data.
const (
	// BonusAIProvider applies when a specific AI provider was identified
	BonusAIProvider = 40

	// BonusAIGeneric applies when only a generic AI-adjacent match was found
	BonusAIGeneric = 20

	// BonusBehavioral applies when behavioral composite confidence clears
	// BehavioralConfidenceThreshold
	BonusBehavioral = 10

	// BonusVendorMatch applies when the automation is built on a known
	// third-party automation platform
	BonusVendorMatch = 15

	// BonusRecentDay / BonusRecentWeek scale with activity recency
	BonusRecentDay  = 10
	BonusRecentWeek = 5

	// Ownership-pattern bonuses
	BonusOwnerExternal = 15
	BonusOwnerService  = 10
	BonusOwnerUnknown  = 10
)

// BehavioralConfidenceThreshold gates the behavioral bonus.
const BehavioralConfidenceThreshold = 0.5

// Recency buckets.
const (
	RecencyDay  = 24 * time.Hour
	RecencyWeek = 7 * 24 * time.Hour
)

// Assessment confidence contributions.
const (
	ConfidenceBase       = 50
	ConfidenceAIProvider = 25
	ConfidenceAIGeneric  = 10
	ConfidenceBehavioral = 15
)

// knownAutomationVendors is the fixed list of third-party automation platforms
// checked against automation names and client identifiers.
var knownAutomationVendors = []string{
	"zapier",
	"make.com",
	"integromat",
	"ifttt",
	"workato",
	"n8n",
	"tray.io",
	"power automate",
	"pipedream",
	"automate.io",
}
