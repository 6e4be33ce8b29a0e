package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/observability/security_events"
)

// securityEventRepository implements security_events.Repository for
// PostgreSQL, the durable backing store behind observability's AsyncLogger.
type securityEventRepository struct {
	db *sql.DB
}

// NewSecurityEventRepository creates a new PostgreSQL security event
// repository.
func NewSecurityEventRepository(db *sql.DB) security_events.Repository {
	return &securityEventRepository{db: db}
}

const securityEventColumns = `id, event_type, severity, tenant_id, user_id, ip, resource, action, result, details, created_at`

func scanSecurityEvent(row interface {
	Scan(dest ...interface{}) error
}) (*security_events.SecurityEvent, error) {
	e := &security_events.SecurityEvent{}
	var eventType, severity string
	var ip, resource, action, result sql.NullString
	var tenantID, userID uuid.NullUUID
	var details []byte

	if err := row.Scan(
		&e.ID, &eventType, &severity, &tenantID, &userID, &ip, &resource, &action, &result, &details, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.EventType = security_events.EventType(eventType)
	e.Severity = security_events.Severity(severity)
	if tenantID.Valid {
		e.TenantID = &tenantID.UUID
	}
	if userID.Valid {
		e.UserID = &userID.UUID
	}
	e.IP = ip.String
	e.Resource = resource.String
	e.Action = action.String
	e.Result = result.String

	if len(details) > 0 {
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return nil, fmt.Errorf("failed to decode security event details: %w", err)
		}
	}
	return e, nil
}

// Create stores a new security event.
func (r *securityEventRepository) Create(ctx context.Context, event *security_events.SecurityEvent) error {
	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode security event details: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO security_events (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, securityEventColumns)
	_, err = r.db.ExecContext(ctx, query,
		event.ID, string(event.EventType), string(event.Severity), event.TenantID, event.UserID,
		event.IP, event.Resource, event.Action, event.Result, detailsJSON, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create security event: %w", err)
	}
	return nil
}

// CreateBatch stores multiple security events in a single transaction —
// the shape AsyncLogger's periodic flush calls into.
func (r *securityEventRepository) CreateBatch(ctx context.Context, events []*security_events.SecurityEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin security event batch: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`INSERT INTO security_events (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, securityEventColumns)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare security event batch insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		detailsJSON, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("failed to encode security event details: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			event.ID, string(event.EventType), string(event.Severity), event.TenantID, event.UserID,
			event.IP, event.Resource, event.Action, event.Result, detailsJSON, event.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert security event: %w", err)
		}
	}

	return tx.Commit()
}

// Find retrieves security events matching filters, newest first.
func (r *securityEventRepository) Find(ctx context.Context, filters security_events.EventFilters) ([]*security_events.SecurityEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM security_events WHERE 1=1`, securityEventColumns)
	args := []interface{}{}
	argPos := 1

	if filters.EventType != nil {
		query += fmt.Sprintf(" AND event_type = $%d", argPos)
		args = append(args, string(*filters.EventType))
		argPos++
	}
	if filters.Severity != nil {
		query += fmt.Sprintf(" AND severity = $%d", argPos)
		args = append(args, string(*filters.Severity))
		argPos++
	}
	if filters.TenantID != nil {
		query += fmt.Sprintf(" AND tenant_id = $%d", argPos)
		args = append(args, *filters.TenantID)
		argPos++
	}
	if filters.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argPos)
		args = append(args, *filters.UserID)
		argPos++
	}
	if filters.IP != nil {
		query += fmt.Sprintf(" AND ip = $%d", argPos)
		args = append(args, *filters.IP)
		argPos++
	}
	if filters.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argPos)
		args = append(args, *filters.Since)
		argPos++
	}
	if filters.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argPos)
		args = append(args, *filters.Until)
		argPos++
	}

	limit := filters.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, filters.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find security events: %w", err)
	}
	defer rows.Close()

	var events []*security_events.SecurityEvent
	for rows.Next() {
		e, err := scanSecurityEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns the count of events matching filters.
func (r *securityEventRepository) Count(ctx context.Context, filters security_events.EventFilters) (int, error) {
	query := `SELECT COUNT(*) FROM security_events WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filters.EventType != nil {
		query += fmt.Sprintf(" AND event_type = $%d", argPos)
		args = append(args, string(*filters.EventType))
		argPos++
	}
	if filters.Severity != nil {
		query += fmt.Sprintf(" AND severity = $%d", argPos)
		args = append(args, string(*filters.Severity))
		argPos++
	}
	if filters.TenantID != nil {
		query += fmt.Sprintf(" AND tenant_id = $%d", argPos)
		args = append(args, *filters.TenantID)
		argPos++
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count security events: %w", err)
	}
	return count, nil
}

// DeleteOlderThan deletes events older than the cutoff, returning the
// number removed — a retention sweep, not called from any request path.
func (r *securityEventRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM security_events WHERE created_at < $1", olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old security events: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}
