package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// licensedResourceRepository implements interfaces.LicensedResourceRepository
// against the denormalized `licensed_resources` table the Profile Evaluator
// reads from.
type licensedResourceRepository struct {
	db *sql.DB
}

// NewLicensedResourceRepository creates a new PostgreSQL licensed-resource
// repository.
func NewLicensedResourceRepository(db *sql.DB) interfaces.LicensedResourceRepository {
	return &licensedResourceRepository{db: db}
}

func (r *licensedResourceRepository) Create(ctx context.Context, resource *models.LicensedResource) error {
	query := `
		INSERT INTO licensed_resources (tenant_id, account_id, email, guest_role, permission, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, account_id, email, guest_role) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		resource.TenantID, resource.AccountID, resource.Email,
		resource.GuestRole, resource.Permission.String(), resource.Verified,
	)
	if err != nil {
		return fmt.Errorf("failed to create licensed resource: %w", err)
	}
	return nil
}

func (r *licensedResourceRepository) scanAll(rows *sql.Rows) ([]models.LicensedResource, error) {
	var out []models.LicensedResource
	for rows.Next() {
		var lr models.LicensedResource
		var permission string
		if err := rows.Scan(&lr.TenantID, &lr.AccountID, &lr.Email, &lr.GuestRole, &permission, &lr.Verified); err != nil {
			return nil, fmt.Errorf("failed to scan licensed resource: %w", err)
		}
		perm, err := models.ParsePermissionName(permission)
		if err != nil {
			return nil, fmt.Errorf("invalid permission stored for licensed resource: %w", err)
		}
		lr.Permission = perm
		out = append(out, lr)
	}
	return out, rows.Err()
}

func (r *licensedResourceRepository) GetByAccountAndEmail(ctx context.Context, accountID uuid.UUID, email string) ([]models.LicensedResource, error) {
	query := `
		SELECT tenant_id, account_id, email, guest_role, permission, verified
		FROM licensed_resources
		WHERE account_id = $1 AND email = $2
	`
	rows, err := r.db.QueryContext(ctx, query, accountID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query licensed resources: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *licensedResourceRepository) GetByEmail(ctx context.Context, email string) ([]models.LicensedResource, error) {
	query := `
		SELECT tenant_id, account_id, email, guest_role, permission, verified
		FROM licensed_resources
		WHERE email = $1
	`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query licensed resources: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *licensedResourceRepository) Verify(ctx context.Context, tenantID, accountID uuid.UUID, email, guestRole string, permission models.Permission) error {
	query := `
		UPDATE licensed_resources
		SET verified = true
		WHERE tenant_id = $1 AND account_id = $2 AND email = $3 AND guest_role = $4 AND permission = $5 AND verified = false
	`
	result, err := r.db.ExecContext(ctx, query, tenantID, accountID, email, guestRole, permission.String())
	if err != nil {
		return fmt.Errorf("failed to verify licensed resource: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no matching unverified licensed resource found")
	}
	return nil
}

func (r *licensedResourceRepository) Delete(ctx context.Context, tenantID, accountID uuid.UUID, email, guestRole string) error {
	query := `
		DELETE FROM licensed_resources
		WHERE tenant_id = $1 AND account_id = $2 AND email = $3 AND guest_role = $4
	`
	_, err := r.db.ExecContext(ctx, query, tenantID, accountID, email, guestRole)
	if err != nil {
		return fmt.Errorf("failed to delete licensed resource: %w", err)
	}
	return nil
}
