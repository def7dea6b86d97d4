package fixtures

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/feedback"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
)

// FeedbackBuilder builds test Feedback entities
type FeedbackBuilder struct {
	t            *testing.T
	orgID        uuid.UUID
	automationID uuid.UUID
	submittedBy  string
	feedbackType feedback.Type
	sentiment    feedback.Sentiment
	comment      string
	snapshot     feedback.Snapshot
}

// NewFeedbackBuilder creates a new FeedbackBuilder with defaults
func NewFeedbackBuilder(t *testing.T) *FeedbackBuilder {
	t.Helper()

	return &FeedbackBuilder{
		t:            t,
		orgID:        uuid.New(),
		automationID: uuid.New(),
		submittedBy:  "analyst@example.com",
		feedbackType: feedback.TypeCorrectDetection,
		sentiment:    feedback.SentimentPositive,
		snapshot: feedback.Snapshot{
			AutomationName: "Workspace Sync",
			Platform:       "google",
			AutomationType: "integration",
			AIDetected:     true,
			AIProvider:     "openai",
			AIConfidence:   95,
			RiskLevel:      risk.LevelHigh,
			RiskScore:      60,
		},
	}
}

// ForAutomation sets the organization and automation this feedback targets
func (b *FeedbackBuilder) ForAutomation(orgID, automationID uuid.UUID) *FeedbackBuilder {
	b.orgID = orgID
	b.automationID = automationID
	return b
}

// WithType sets the feedback type and a matching sentiment
func (b *FeedbackBuilder) WithType(t feedback.Type, sentiment feedback.Sentiment) *FeedbackBuilder {
	b.feedbackType = t
	b.sentiment = sentiment
	return b
}

// WithComment sets the free-text comment
func (b *FeedbackBuilder) WithComment(comment string) *FeedbackBuilder {
	b.comment = comment
	return b
}

// WithSnapshot replaces the frozen detection state
func (b *FeedbackBuilder) WithSnapshot(s feedback.Snapshot) *FeedbackBuilder {
	b.snapshot = s
	return b
}

// Build creates the Feedback entity in pending status
func (b *FeedbackBuilder) Build() *feedback.Feedback {
	b.t.Helper()

	f, err := feedback.New(b.orgID, b.automationID, b.submittedBy, b.feedbackType, b.sentiment, b.snapshot)
	require.NoError(b.t, err)
	f.Comment = b.comment
	return f
}
