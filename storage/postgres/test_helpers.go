package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lepista-tech/mycelium/identity/models"
)

// createTestTenant creates a test tenant for use in tests
func createTestTenant(ctx context.Context, db *sql.DB, tenantID uuid.UUID) error {
	query := `
		INSERT INTO tenants (id, name, description, owners, managers, meta, statuses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		tenantID,
		"Test Tenant",
		nil,
		pq.Array([]string{}),
		pq.Array([]string{}),
		[]byte(`{}`),
		[]byte(`[{"kind":"`+string(models.TenantStatusActive)+`"}]`),
		now,
		now,
	)
	return err
}

