package feedback

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
)

// Type classifies a human judgment about one detection result.
type Type string

const (
	TypeCorrectDetection Type = "correct_detection"
	TypeFalsePositive    Type = "false_positive"
	TypeFalseNegative    Type = "false_negative"
	TypeRiskTooHigh      Type = "risk_too_high"
	TypeRiskTooLow       Type = "risk_too_low"
	TypeOther            Type = "other"
)

func ValidateType(t Type) error {
	switch t {
	case TypeCorrectDetection, TypeFalsePositive, TypeFalseNegative,
		TypeRiskTooHigh, TypeRiskTooLow, TypeOther:
		return nil
	default:
		return errors.NewValidationError("INVALID_FEEDBACK_TYPE", "unknown feedback type")
	}
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Status follows the one-way lifecycle pending -> acknowledged -> resolved ->
// archived. Rank ordering backs the no-backward-transition invariant.
type Status string

const (
	StatusPending      Status = "pending"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
	StatusArchived     Status = "archived"
)

var statusRank = map[Status]int{
	StatusPending:      0,
	StatusAcknowledged: 1,
	StatusResolved:     2,
	StatusArchived:     3,
}

// Rank returns the position of a status in the lifecycle order.
func (s Status) Rank() int {
	return statusRank[s]
}

func (s Status) String() string {
	return string(s)
}

// Snapshot freezes the automation and detection state at submission time so
// exported training samples reflect what the reviewer actually saw.
type Snapshot struct {
	AutomationName string     `json:"automation_name"`
	Platform       string     `json:"platform"`
	AutomationType string     `json:"automation_type"`
	Permissions    []string   `json:"permissions,omitempty"`
	AIDetected     bool       `json:"ai_detected"`
	AIProvider     string     `json:"ai_provider,omitempty"`
	AIConfidence   int        `json:"ai_confidence"`
	RiskLevel      risk.Level `json:"risk_level"`
	RiskScore      int        `json:"risk_score"`
	Factors        []string   `json:"factors,omitempty"`
}

// Resolution is the payload required to resolve a feedback record.
type Resolution struct {
	Action     string    `json:"action"`
	Notes      string    `json:"notes,omitempty"`
	ResolvedBy string    `json:"resolved_by"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Feedback is a human judgment about one automation's detection and risk
// result. Status transitions are one-directional and enforced here.
type Feedback struct {
	ID                  uuid.UUID   `json:"id"`
	OrganizationID      uuid.UUID   `json:"organization_id"`
	AutomationID        uuid.UUID   `json:"automation_id"`
	SubmittedBy         string      `json:"submitted_by"`
	Type                Type        `json:"type"`
	Sentiment           Sentiment   `json:"sentiment"`
	Comment             string      `json:"comment,omitempty"`
	Snapshot            Snapshot    `json:"snapshot"`
	SuggestedLevel      *risk.Level `json:"suggested_level,omitempty"`
	SubmitterConfidence *int        `json:"submitter_confidence,omitempty"`
	Status              Status      `json:"status"`
	Resolution          *Resolution `json:"resolution,omitempty"`

	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// New constructs a pending feedback record.
func New(orgID, automationID uuid.UUID, submittedBy string, typ Type, sentiment Sentiment, snapshot Snapshot) (*Feedback, error) {
	if orgID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_ORGANIZATION", "organization id cannot be nil")
	}
	if automationID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_AUTOMATION", "automation id cannot be nil")
	}
	if submittedBy == "" {
		return nil, errors.NewValidationError("MISSING_SUBMITTER", "submitter identity cannot be empty")
	}
	if err := ValidateType(typ); err != nil {
		return nil, err
	}
	switch sentiment {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		return nil, errors.NewValidationError("INVALID_SENTIMENT", "unknown sentiment")
	}

	return &Feedback{
		ID:             uuid.New(),
		OrganizationID: orgID,
		AutomationID:   automationID,
		SubmittedBy:    submittedBy,
		Type:           typ,
		Sentiment:      sentiment,
		Snapshot:       snapshot,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}, nil
}

// Acknowledge moves pending feedback to acknowledged. It only stamps the
// transition; resolution data comes later.
func (f *Feedback) Acknowledge() error {
	if err := f.checkTransition(StatusAcknowledged); err != nil {
		return err
	}
	now := time.Now()
	f.Status = StatusAcknowledged
	f.AcknowledgedAt = &now
	return nil
}

// Resolve moves acknowledged (or pending) feedback to resolved with a required
// resolution payload.
func (f *Feedback) Resolve(res Resolution) error {
	if res.Action == "" || res.ResolvedBy == "" {
		return errors.NewValidationError("MISSING_RESOLUTION",
			"resolution requires an action and a resolver identity")
	}
	if err := f.checkTransition(StatusResolved); err != nil {
		return err
	}
	now := time.Now()
	if res.ResolvedAt.IsZero() {
		res.ResolvedAt = now
	}
	f.Status = StatusResolved
	f.Resolution = &res
	f.ResolvedAt = &now
	return nil
}

// Archive moves resolved feedback to archived once it has aged past the
// retention window. Non-resolved records are rejected.
func (f *Feedback) Archive(retention time.Duration) error {
	if err := f.checkTransition(StatusArchived); err != nil {
		return err
	}
	if f.Status != StatusResolved {
		return errors.NewInvalidTransitionError("feedback", f.Status.String(), StatusArchived.String())
	}
	if f.ResolvedAt == nil || time.Since(*f.ResolvedAt) < retention {
		return errors.NewBusinessError("RETENTION_NOT_ELAPSED",
			"feedback cannot be archived before the retention window elapses")
	}
	now := time.Now()
	f.Status = StatusArchived
	f.ArchivedAt = &now
	return nil
}

// checkTransition rejects moves that would take the status backward, repeat
// the current status, or skip the resolved gate before archive.
func (f *Feedback) checkTransition(to Status) error {
	if to.Rank() <= f.Status.Rank() {
		return errors.NewInvalidTransitionError("feedback", f.Status.String(), to.String())
	}
	if to == StatusArchived && f.Status != StatusResolved {
		return errors.NewInvalidTransitionError("feedback", f.Status.String(), to.String())
	}
	if to == StatusResolved && f.Status.Rank() > StatusAcknowledged.Rank() {
		return errors.NewInvalidTransitionError("feedback", f.Status.String(), to.String())
	}
	return nil
}
