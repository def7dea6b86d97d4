package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/feedback"
	"github.com/davidleathers/shadow-automation-backend/internal/infrastructure/database"
)

// feedbackRepository implements feedback.Store using PostgreSQL
type feedbackRepository struct {
	db *database.ConnectionPool
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *database.ConnectionPool) feedback.Store {
	return &feedbackRepository{db: db}
}

// Create inserts a new feedback record
func (r *feedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	snapshotJSON, err := json.Marshal(f.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	resolutionJSON, err := marshalResolution(f.Resolution)
	if err != nil {
		return err
	}

	_, err = r.db.Pool().Exec(ctx, `
		INSERT INTO feedback (
			id, organization_id, automation_id, submitted_by,
			type, sentiment, comment, snapshot,
			suggested_level, submitter_confidence, status, resolution,
			created_at, acknowledged_at, resolved_at, archived_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16
		)
	`,
		f.ID, f.OrganizationID, f.AutomationID, f.SubmittedBy,
		f.Type, f.Sentiment, f.Comment, snapshotJSON,
		f.SuggestedLevel, f.SubmitterConfidence, f.Status, resolutionJSON,
		f.CreatedAt, f.AcknowledgedAt, f.ResolvedAt, f.ArchivedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.NewConflictError(fmt.Sprintf("feedback %s already exists", f.ID))
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

const feedbackColumns = `
	id, organization_id, automation_id, submitted_by,
	type, sentiment, comment, snapshot,
	suggested_level, submitter_confidence, status, resolution,
	created_at, acknowledged_at, resolved_at, archived_at
`

// Get retrieves one feedback record within an organization
func (r *feedbackRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*feedback.Feedback, error) {
	row := r.db.Pool().QueryRow(ctx, `
		SELECT `+feedbackColumns+`
		FROM feedback
		WHERE organization_id = $1 AND id = $2
	`, orgID, id)

	return scanFeedback(row)
}

// Update persists a status transition or resolution
func (r *feedbackRepository) Update(ctx context.Context, f *feedback.Feedback) error {
	resolutionJSON, err := marshalResolution(f.Resolution)
	if err != nil {
		return err
	}

	tag, err := r.db.Pool().Exec(ctx, `
		UPDATE feedback
		SET status = $3, resolution = $4,
		    acknowledged_at = $5, resolved_at = $6, archived_at = $7
		WHERE organization_id = $1 AND id = $2
	`,
		f.OrganizationID, f.ID,
		f.Status, resolutionJSON,
		f.AcknowledgedAt, f.ResolvedAt, f.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrFeedbackNotFound
	}
	return nil
}

// ListResolved returns resolved records oldest first, up to limit
func (r *feedbackRepository) ListResolved(ctx context.Context, orgID *uuid.UUID, limit int) ([]*feedback.Feedback, error) {
	query := `
		SELECT ` + feedbackColumns + `
		FROM feedback
		WHERE status = 'resolved'
	`
	args := []interface{}{}
	if orgID != nil {
		query += ` AND organization_id = $1`
		args = append(args, *orgID)
	}
	query += fmt.Sprintf(` ORDER BY resolved_at ASC LIMIT %d`, limit)

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resolved feedback: %w", err)
	}
	defer rows.Close()

	var out []*feedback.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFeedback(row pgx.Row) (*feedback.Feedback, error) {
	var (
		f              feedback.Feedback
		snapshotJSON   []byte
		resolutionJSON []byte
	)
	err := row.Scan(
		&f.ID, &f.OrganizationID, &f.AutomationID, &f.SubmittedBy,
		&f.Type, &f.Sentiment, &f.Comment, &snapshotJSON,
		&f.SuggestedLevel, &f.SubmitterConfidence, &f.Status, &resolutionJSON,
		&f.CreatedAt, &f.AcknowledgedAt, &f.ResolvedAt, &f.ArchivedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.ErrFeedbackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan feedback: %w", err)
	}
	if err := json.Unmarshal(snapshotJSON, &f.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if len(resolutionJSON) > 0 {
		var res feedback.Resolution
		if err := json.Unmarshal(resolutionJSON, &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal resolution: %w", err)
		}
		f.Resolution = &res
	}
	return &f, nil
}

func marshalResolution(res *feedback.Resolution) ([]byte, error) {
	if res == nil {
		return nil, nil
	}
	out, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resolution: %w", err)
	}
	return out, nil
}
