package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/scope"
	"github.com/davidleathers/shadow-automation-backend/internal/infrastructure/database"
)

// scopeLibraryRepository implements scope.Reader using PostgreSQL
type scopeLibraryRepository struct {
	db *database.ConnectionPool
}

// NewScopeLibraryRepository creates a new scope library repository
func NewScopeLibraryRepository(db *database.ConnectionPool) scope.Reader {
	return &scopeLibraryRepository{db: db}
}

// Lookup returns the curated entry for a scope on one platform
func (r *scopeLibraryRepository) Lookup(ctx context.Context, scopeID string, platform automation.Platform) (*scope.LibraryEntry, error) {
	row := r.db.Pool().QueryRow(ctx, `
		SELECT scope_id, platform, score, severity, data_types, description, alternative
		FROM scope_library
		WHERE scope_id = $1 AND platform = $2
	`, scopeID, platform)

	var entry scope.LibraryEntry
	err := row.Scan(
		&entry.ScopeID, &entry.Platform, &entry.Score, &entry.Severity,
		&entry.DataTypes, &entry.Description, &entry.Alternative,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.ErrScopeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up scope %s: %w", scopeID, err)
	}
	return &entry, nil
}
