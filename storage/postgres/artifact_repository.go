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

// artifactRepository implements ArtifactRepository for PostgreSQL, backing
// the Webhook Dispatcher's at-least-once delivery queue.
type artifactRepository struct {
	db *sql.DB
}

// NewArtifactRepository creates a new PostgreSQL artifact repository.
func NewArtifactRepository(db *sql.DB) interfaces.ArtifactRepository {
	return &artifactRepository{db: db}
}

const artifactColumns = `id, trigger, body, status, last_status, last_reason, attempts, next_attempt_at, lease_expires_at, created_at`

func scanArtifact(row interface {
	Scan(dest ...interface{}) error
}) (*models.WebHookPayloadArtifact, error) {
	a := &models.WebHookPayloadArtifact{}
	var trigger, status string
	var lastStatus sql.NullInt64
	var lastReason sql.NullString
	var leaseExpiresAt sql.NullTime

	if err := row.Scan(
		&a.ID, &trigger, &a.Body, &status, &lastStatus, &lastReason, &a.Attempts,
		&a.NextAttemptAt, &leaseExpiresAt, &a.CreatedAt,
	); err != nil {
		return nil, err
	}

	a.Trigger = models.Trigger(trigger)
	a.Status = models.ArtifactStatus{Kind: models.ArtifactStatusKind(status)}
	if lastStatus.Valid {
		v := int(lastStatus.Int64)
		a.Status.LastStatus = &v
	}
	if lastReason.Valid {
		a.Status.LastReason = lastReason.String
	}
	if leaseExpiresAt.Valid {
		a.LeaseExpiresAt = &leaseExpiresAt.Time
	}

	return a, nil
}

// Create persists a new artifact queued for delivery.
func (r *artifactRepository) Create(ctx context.Context, artifact *models.WebHookPayloadArtifact) error {
	query := fmt.Sprintf(`
		INSERT INTO webhook_artifacts (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, artifactColumns)

	if artifact.ID == uuid.Nil {
		artifact.ID = uuid.New()
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now()
	}
	if artifact.Status.Kind == "" {
		artifact.Status.Kind = models.ArtifactPending
	}

	_, err := r.db.ExecContext(ctx, query,
		artifact.ID, string(artifact.Trigger), artifact.Body, string(artifact.Status.Kind),
		artifact.Status.LastStatus, nullString(artifact.Status.LastReason),
		artifact.Attempts, artifact.NextAttemptAt, artifact.LeaseExpiresAt, artifact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}
	return nil
}

// GetByID retrieves an artifact by its correspondence id.
func (r *artifactRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WebHookPayloadArtifact, error) {
	query := fmt.Sprintf(`SELECT %s FROM webhook_artifacts WHERE id = $1`, artifactColumns)
	a, err := scanArtifact(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("artifact not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return a, nil
}

// ClaimDue leases up to limit due artifacts, stamping LeaseExpiresAt so
// concurrent dispatcher workers don't double-claim the same row.
func (r *artifactRepository) ClaimDue(ctx context.Context, now time.Time, leaseFor time.Duration, limit int) ([]*models.WebHookPayloadArtifact, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		SELECT %s FROM webhook_artifacts
		WHERE status IN ('pending', 'in_flight')
		  AND next_attempt_at <= $1
		  AND (lease_expires_at IS NULL OR lease_expires_at <= $1)
		ORDER BY next_attempt_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, artifactColumns)

	rows, err := tx.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select due artifacts: %w", err)
	}

	var artifacts []*models.WebHookPayloadArtifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	lease := now.Add(leaseFor)
	for _, a := range artifacts {
		if _, err := tx.ExecContext(ctx,
			`UPDATE webhook_artifacts SET status = 'in_flight', lease_expires_at = $2 WHERE id = $1`,
			a.ID, lease,
		); err != nil {
			return nil, fmt.Errorf("failed to lease artifact %s: %w", a.ID, err)
		}
		a.Status.Kind = models.ArtifactInFlight
		a.LeaseExpiresAt = &lease
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim transaction: %w", err)
	}

	return artifacts, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Update persists the artifact's status/attempt/schedule fields.
func (r *artifactRepository) Update(ctx context.Context, artifact *models.WebHookPayloadArtifact) error {
	query := `
		UPDATE webhook_artifacts
		SET status = $2, last_status = $3, last_reason = $4, attempts = $5,
		    next_attempt_at = $6, lease_expires_at = $7
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		artifact.ID, string(artifact.Status.Kind),
		artifact.Status.LastStatus, nullString(artifact.Status.LastReason),
		artifact.Attempts, artifact.NextAttemptAt, artifact.LeaseExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update artifact: %w", err)
	}
	return nil
}
