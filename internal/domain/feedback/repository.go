package feedback

import (
	"context"

	"github.com/google/uuid"
)

// Store persists feedback records. All reads and writes are organization
// scoped; implementations must never return records across tenant boundaries.
type Store interface {
	// Create inserts a new feedback record.
	Create(ctx context.Context, f *Feedback) error

	// Get retrieves one feedback record within an organization.
	Get(ctx context.Context, orgID, id uuid.UUID) (*Feedback, error)

	// Update persists a status transition or resolution.
	Update(ctx context.Context, f *Feedback) error

	// ListResolved returns resolved (not yet archived) records for an
	// organization, oldest first, up to limit. A nil orgID lists across all
	// organizations for export use only.
	ListResolved(ctx context.Context, orgID *uuid.UUID, limit int) ([]*Feedback, error)
}
