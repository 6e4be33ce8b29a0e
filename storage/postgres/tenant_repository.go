package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// tenantRepository implements TenantRepository for PostgreSQL.
type tenantRepository struct {
	db *sql.DB
}

// NewTenantRepository creates a new PostgreSQL tenant repository.
func NewTenantRepository(db *sql.DB) interfaces.TenantRepository {
	return &tenantRepository{db: db}
}

const tenantColumns = `id, name, description, owners, managers, meta, statuses, created_at, updated_at`

func scanTenant(row interface {
	Scan(dest ...interface{}) error
}) (*models.Tenant, error) {
	t := &models.Tenant{}
	var description sql.NullString
	var owners, managers pq.StringArray
	var metaJSON, statusesJSON []byte

	if err := row.Scan(
		&t.ID, &t.Name, &description, &owners, &managers,
		&metaJSON, &statusesJSON, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		t.Description = &description.String
	}

	t.Owners = stringsToUUIDs(owners)
	t.Managers = stringsToUUIDs(managers)

	if len(metaJSON) > 0 {
		var meta models.TenantMeta
		if err := json.Unmarshal(metaJSON, &meta); err != nil {
			return nil, fmt.Errorf("invalid meta stored for tenant %s: %w", t.ID, err)
		}
		t.Meta = &meta
	}

	if len(statusesJSON) > 0 {
		if err := json.Unmarshal(statusesJSON, &t.Statuses); err != nil {
			return nil, fmt.Errorf("invalid status timeline stored for tenant %s: %w", t.ID, err)
		}
	}

	return t, nil
}

// Create creates a new tenant.
func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := fmt.Sprintf(`
		INSERT INTO tenants (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, tenantColumns)

	now := time.Now()
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
	}
	if tenant.UpdatedAt.IsZero() {
		tenant.UpdatedAt = now
	}

	metaJSON, statusesJSON, err := marshalTenantExtras(tenant)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		tenant.ID, tenant.Name, tenant.Description,
		pq.Array(uuidsToStrings(tenant.Owners)), pq.Array(uuidsToStrings(tenant.Managers)),
		metaJSON, statusesJSON, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by ID.
func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE id = $1`, tenantColumns)
	t, err := scanTenant(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// Update updates an existing tenant.
func (r *tenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, description = $3, owners = $4, managers = $5,
		    meta = $6, statuses = $7, updated_at = $8
		WHERE id = $1
	`

	tenant.UpdatedAt = time.Now()

	metaJSON, statusesJSON, err := marshalTenantExtras(tenant)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		tenant.ID, tenant.Name, tenant.Description,
		pq.Array(uuidsToStrings(tenant.Owners)), pq.Array(uuidsToStrings(tenant.Managers)),
		metaJSON, statusesJSON, tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return nil
}

// AppendStatus pushes a new entry onto the tenant's status timeline.
func (r *tenantRepository) AppendStatus(ctx context.Context, id uuid.UUID, status models.TenantStatus) error {
	tenant, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	tenant.Statuses = append(tenant.Statuses, status)
	return r.Update(ctx, tenant)
}

// List retrieves a list of tenants.
func (r *tenantRepository) List(ctx context.Context, filters *interfaces.TenantFilters) ([]*models.Tenant, error) {
	if filters == nil {
		filters = &interfaces.TenantFilters{Page: 1, PageSize: 20}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE 1=1`, tenantColumns)
	args := []interface{}{}
	argPos := 1

	if filters.OwnerID != nil {
		query += fmt.Sprintf(" AND $%d = ANY(owners)", argPos)
		args = append(args, filters.OwnerID.String())
		argPos++
	}
	if filters.ManagerAccountID != nil {
		query += fmt.Sprintf(" AND $%d = ANY(managers)", argPos)
		args = append(args, filters.ManagerAccountID.String())
		argPos++
	}
	if filters.Search != nil {
		query += fmt.Sprintf(" AND name ILIKE $%d", argPos)
		args = append(args, "%"+*filters.Search+"%")
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		if filters.StatusKind != nil && t.CurrentStatus().Kind != *filters.StatusKind {
			continue
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func marshalTenantExtras(tenant *models.Tenant) (metaJSON, statusesJSON []byte, err error) {
	if tenant.Meta != nil {
		metaJSON, err = json.Marshal(tenant.Meta)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal tenant meta: %w", err)
		}
	}
	statusesJSON, err = json.Marshal(tenant.Statuses)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal tenant statuses: %w", err)
	}
	return metaJSON, statusesJSON, nil
}
