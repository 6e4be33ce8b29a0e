package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// hookResponseRepository implements HookResponseRepository for PostgreSQL.
type hookResponseRepository struct {
	db *sql.DB
}

// NewHookResponseRepository creates a new PostgreSQL hook-response repository.
func NewHookResponseRepository(db *sql.DB) interfaces.HookResponseRepository {
	return &hookResponseRepository{db: db}
}

// Create records one subscriber's delivery outcome for one attempt.
func (r *hookResponseRepository) Create(ctx context.Context, resp *models.HookResponse) error {
	query := `
		INSERT INTO hook_responses (
			id, artifact_id, webhook_id, attempt_number, status_code, succeeded, error, attempted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	if resp.AttemptedAt.IsZero() {
		resp.AttemptedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		resp.ID, resp.ArtifactID, resp.WebHookID, resp.AttemptNumber,
		resp.StatusCode, resp.Succeeded, resp.Error, resp.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hook response: %w", err)
	}
	return nil
}

// GetByArtifactID retrieves every recorded attempt for an artifact.
func (r *hookResponseRepository) GetByArtifactID(ctx context.Context, artifactID uuid.UUID) ([]*models.HookResponse, error) {
	query := `
		SELECT id, artifact_id, webhook_id, attempt_number, status_code, succeeded, error, attempted_at
		FROM hook_responses
		WHERE artifact_id = $1
		ORDER BY attempted_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, artifactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hook responses: %w", err)
	}
	defer rows.Close()

	var responses []*models.HookResponse
	for rows.Next() {
		resp := &models.HookResponse{}
		if err := rows.Scan(
			&resp.ID, &resp.ArtifactID, &resp.WebHookID, &resp.AttemptNumber,
			&resp.StatusCode, &resp.Succeeded, &resp.Error, &resp.AttemptedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan hook response: %w", err)
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}
