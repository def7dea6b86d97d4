package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/infrastructure/database"
)

// automationRepository implements automation.Store using PostgreSQL
type automationRepository struct {
	db *database.ConnectionPool
}

// NewAutomationRepository creates a new automation repository
func NewAutomationRepository(db *database.ConnectionPool) automation.Store {
	return &automationRepository{db: db}
}

// SaveWithAssessment upserts the automation and appends its assessment in a
// single transaction. An automation is never visible without a score.
func (r *automationRepository) SaveWithAssessment(ctx context.Context, a *automation.Automation, as *risk.Assessment) error {
	metadataJSON, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	componentsJSON, err := json.Marshal(as.Components)
	if err != nil {
		return fmt.Errorf("failed to marshal component scores: %w", err)
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO automations (
				id, organization_id, connection_id, external_id,
				name, type, platform, status, trigger, actions,
				permissions, metadata, owner_id,
				created_at, updated_at, last_triggered_at
			) VALUES (
				$1, $2, $3, $4,
				$5, $6, $7, $8, $9, $10,
				$11, $12, $13,
				$14, $15, $16
			)
			ON CONFLICT (organization_id, connection_id, external_id) DO UPDATE SET
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				trigger = EXCLUDED.trigger,
				actions = EXCLUDED.actions,
				permissions = EXCLUDED.permissions,
				metadata = EXCLUDED.metadata,
				owner_id = EXCLUDED.owner_id,
				updated_at = EXCLUDED.updated_at,
				last_triggered_at = EXCLUDED.last_triggered_at
		`,
			a.ID, a.OrganizationID, a.ConnectionID, a.ExternalID,
			a.Name, a.Type, a.Platform, a.Status, a.Trigger, a.Actions,
			a.Permissions, metadataJSON, a.OwnerID,
			a.CreatedAt, a.UpdatedAt, a.LastTriggeredAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert automation: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO risk_assessments (
				id, automation_id, level, score, components,
				factors, compliance_issues, recommendations,
				confidence, assessed_at, assessed_by
			) VALUES (
				$1, $2, $3, $4, $5,
				$6, $7, $8,
				$9, $10, $11
			)
		`,
			as.ID, as.AutomationID, as.Level, as.Score, componentsJSON,
			as.Factors, as.ComplianceIssues, as.Recommendations,
			as.Confidence, as.AssessedAt, as.AssessedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert assessment: %w", err)
		}
		return nil
	})
}

const automationColumns = `
	id, organization_id, connection_id, external_id,
	name, type, platform, status, trigger, actions,
	permissions, metadata, owner_id,
	created_at, updated_at, last_triggered_at
`

// GetByKey retrieves an automation by its discovery key
func (r *automationRepository) GetByKey(ctx context.Context, key automation.Key) (*automation.Automation, error) {
	row := r.db.Pool().QueryRow(ctx, `
		SELECT `+automationColumns+`
		FROM automations
		WHERE organization_id = $1 AND connection_id = $2 AND external_id = $3
	`, key.OrganizationID, key.ConnectionID, key.ExternalID)

	return scanAutomation(row)
}

// GetByID retrieves an automation by its ID
func (r *automationRepository) GetByID(ctx context.Context, id uuid.UUID) (*automation.Automation, error) {
	row := r.db.Pool().QueryRow(ctx, `
		SELECT `+automationColumns+`
		FROM automations
		WHERE id = $1
	`, id)

	return scanAutomation(row)
}

// ListByConnection lists all automations discovered on one connection
func (r *automationRepository) ListByConnection(ctx context.Context, connectionID uuid.UUID) ([]*automation.Automation, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT `+automationColumns+`
		FROM automations
		WHERE connection_id = $1
		ORDER BY external_id
	`, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list automations: %w", err)
	}
	defer rows.Close()

	var out []*automation.Automation
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LatestAssessment returns the most recent assessment for an automation
func (r *automationRepository) LatestAssessment(ctx context.Context, automationID uuid.UUID) (*risk.Assessment, error) {
	row := r.db.Pool().QueryRow(ctx, `
		SELECT id, automation_id, level, score, components,
		       factors, compliance_issues, recommendations,
		       confidence, assessed_at, assessed_by
		FROM risk_assessments
		WHERE automation_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1
	`, automationID)

	var (
		as             risk.Assessment
		componentsJSON []byte
	)
	err := row.Scan(
		&as.ID, &as.AutomationID, &as.Level, &as.Score, &componentsJSON,
		&as.Factors, &as.ComplianceIssues, &as.Recommendations,
		&as.Confidence, &as.AssessedAt, &as.AssessedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NewNotFoundError("assessment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}
	if err := json.Unmarshal(componentsJSON, &as.Components); err != nil {
		return nil, fmt.Errorf("failed to unmarshal component scores: %w", err)
	}
	return &as, nil
}

func scanAutomation(row pgx.Row) (*automation.Automation, error) {
	var (
		a            automation.Automation
		metadataJSON []byte
	)
	err := row.Scan(
		&a.ID, &a.OrganizationID, &a.ConnectionID, &a.ExternalID,
		&a.Name, &a.Type, &a.Platform, &a.Status, &a.Trigger, &a.Actions,
		&a.Permissions, &metadataJSON, &a.OwnerID,
		&a.CreatedAt, &a.UpdatedAt, &a.LastTriggeredAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.ErrAutomationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan automation: %w", err)
	}
	if err := json.Unmarshal(metadataJSON, &a.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &a, nil
}
