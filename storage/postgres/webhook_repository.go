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

// webhookRepository implements WebhookRepository for PostgreSQL.
type webhookRepository struct {
	db *sql.DB
}

// NewWebhookRepository creates a new PostgreSQL webhook repository.
func NewWebhookRepository(db *sql.DB) interfaces.WebhookRepository {
	return &webhookRepository{db: db}
}

const webhookColumns = `id, name, description, target_url, trigger, is_active, encrypted_secret, created_at, updated_at`

func scanWebhook(row interface {
	Scan(dest ...interface{}) error
}) (*models.WebHook, error) {
	w := &models.WebHook{}
	var description sql.NullString
	var trigger string

	if err := row.Scan(
		&w.ID, &w.Name, &description, &w.TargetURL, &trigger,
		&w.IsActive, &w.EncryptedSecret, &w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		w.Description = &description.String
	}
	w.Trigger = models.Trigger(trigger)

	return w, nil
}

// Create creates a new webhook subscriber.
func (r *webhookRepository) Create(ctx context.Context, w *models.WebHook) error {
	query := fmt.Sprintf(`
		INSERT INTO webhooks (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, webhookColumns)

	now := time.Now()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.Name, w.Description, w.TargetURL, string(w.Trigger),
		w.IsActive, w.EncryptedSecret, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	return nil
}

// GetByID retrieves a webhook by ID.
func (r *webhookRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WebHook, error) {
	query := fmt.Sprintf(`SELECT %s FROM webhooks WHERE id = $1`, webhookColumns)
	w, err := scanWebhook(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("webhook not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}
	return w, nil
}

// GetActiveByTrigger returns every active subscriber bound to trigger.
func (r *webhookRepository) GetActiveByTrigger(ctx context.Context, trigger models.Trigger) ([]*models.WebHook, error) {
	query := fmt.Sprintf(`SELECT %s FROM webhooks WHERE trigger = $1 AND is_active = true`, webhookColumns)

	rows, err := r.db.QueryContext(ctx, query, string(trigger))
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks by trigger: %w", err)
	}
	defer rows.Close()

	var webhooks []*models.WebHook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

// Update updates an existing webhook.
func (r *webhookRepository) Update(ctx context.Context, w *models.WebHook) error {
	query := `
		UPDATE webhooks
		SET name = $2, description = $3, target_url = $4, trigger = $5,
		    is_active = $6, encrypted_secret = $7, updated_at = $8
		WHERE id = $1
	`

	w.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.Name, w.Description, w.TargetURL, string(w.Trigger),
		w.IsActive, w.EncryptedSecret, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update webhook: %w", err)
	}
	return nil
}

// Delete removes a webhook subscriber.
func (r *webhookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM webhooks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("webhook not found")
	}
	return nil
}

// List retrieves a list of webhooks with filters.
func (r *webhookRepository) List(ctx context.Context, filters *interfaces.WebhookFilters) ([]*models.WebHook, error) {
	if filters == nil {
		filters = &interfaces.WebhookFilters{Page: 1, PageSize: 20}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`SELECT %s FROM webhooks WHERE 1=1`, webhookColumns)
	args := []interface{}{}
	argPos := 1

	if filters.Trigger != nil {
		query += fmt.Sprintf(" AND trigger = $%d", argPos)
		args = append(args, string(*filters.Trigger))
		argPos++
	}
	if filters.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argPos)
		args = append(args, *filters.IsActive)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []*models.WebHook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}
