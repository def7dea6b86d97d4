package risk

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
)

// Level buckets an overall score. The thresholds below are the single
// canonical table for the whole system; nothing else maps scores to levels.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Canonical score thresholds.
const (
	ThresholdCritical = 70
	ThresholdHigh     = 50
	ThresholdMedium   = 25
)

func (l Level) String() string {
	return string(l)
}

// LevelForScore maps a clamped 0-100 score to its level.
func LevelForScore(score int) Level {
	switch {
	case score >= ThresholdCritical:
		return LevelCritical
	case score >= ThresholdHigh:
		return LevelHigh
	case score >= ThresholdMedium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ComponentScores decompose an overall score. The overall score is always the
// clamped sum of the four components.
type ComponentScores struct {
	Permission int `json:"permission"`
	DataAccess int `json:"data_access"`
	Activity   int `json:"activity"`
	Ownership  int `json:"ownership"`
}

// Sum returns the unclamped component total.
func (c ComponentScores) Sum() int {
	return c.Permission + c.DataAccess + c.Activity + c.Ownership
}

// Assessor identifies who produced an assessment.
type Assessor string

const (
	AssessorSystem Assessor = "system"
	AssessorHuman  Assessor = "human"
)

// Assessment is one immutable scored snapshot for an automation. History is
// append-only: a new score supersedes, never mutates, an old one. The current
// risk for an automation is its latest assessment by timestamp.
type Assessment struct {
	ID               uuid.UUID       `json:"id"`
	AutomationID     uuid.UUID       `json:"automation_id"`
	Level            Level           `json:"level"`
	Score            int             `json:"score"`
	Components       ComponentScores `json:"components"`
	Factors          []string        `json:"factors"`
	ComplianceIssues []string        `json:"compliance_issues,omitempty"`
	Recommendations  []string        `json:"recommendations,omitempty"`
	Confidence       int             `json:"confidence"`
	AssessedAt       time.Time       `json:"assessed_at"`
	AssessedBy       Assessor        `json:"assessed_by"`
}

// NewAssessment builds an assessment from component scores. The overall score
// and level are derived here and nowhere else, keeping the score-from-components
// invariant by construction.
func NewAssessment(automationID uuid.UUID, components ComponentScores, factors []string, confidence int, by Assessor) (*Assessment, error) {
	if automationID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_AUTOMATION", "automation id cannot be nil")
	}
	if by != AssessorSystem && by != AssessorHuman {
		return nil, errors.NewValidationError("INVALID_ASSESSOR", "assessor must be system or human")
	}

	score := ClampScore(components.Sum())
	return &Assessment{
		ID:           uuid.New(),
		AutomationID: automationID,
		Level:        LevelForScore(score),
		Score:        score,
		Components:   components,
		Factors:      factors,
		Confidence:   ClampScore(confidence),
		AssessedAt:   time.Now(),
		AssessedBy:   by,
	}, nil
}

// ClampScore bounds a raw score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
