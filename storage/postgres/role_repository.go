package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// roleRepository implements GuestRoleRepository for PostgreSQL.
type roleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new PostgreSQL guest-role repository.
func NewRoleRepository(db *sql.DB) interfaces.GuestRoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *models.GuestRole) error {
	query := `
		INSERT INTO guest_roles (id, name, slug, description, permission, system, children, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	if role.UpdatedAt.IsZero() {
		role.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		role.ID, role.Name, role.Slug, role.Description, role.Permission.String(),
		role.System, pq.Array(uuidsToStrings(role.Children)), role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

func (r *roleRepository) scanRole(row interface {
	Scan(dest ...interface{}) error
}) (*models.GuestRole, error) {
	role := &models.GuestRole{}
	var description sql.NullString
	var permission string
	var children pq.StringArray

	if err := row.Scan(
		&role.ID, &role.Name, &role.Slug, &description, &permission,
		&role.System, &children, &role.CreatedAt, &role.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		role.Description = &description.String
	}
	perm, err := models.ParsePermissionName(permission)
	if err != nil {
		return nil, fmt.Errorf("invalid permission stored for role %s: %w", role.ID, err)
	}
	role.Permission = perm
	role.Children = stringsToUUIDs(children)

	return role, nil
}

func (r *roleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GuestRole, error) {
	query := `
		SELECT id, name, slug, description, permission, system, children, created_at, updated_at
		FROM guest_roles
		WHERE id = $1
	`
	role, err := r.scanRole(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("role not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

func (r *roleRepository) GetBySlug(ctx context.Context, slug string) (*models.GuestRole, error) {
	query := `
		SELECT id, name, slug, description, permission, system, children, created_at, updated_at
		FROM guest_roles
		WHERE slug = $1
	`
	role, err := r.scanRole(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("role not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role by slug: %w", err)
	}
	return role, nil
}

func (r *roleRepository) Update(ctx context.Context, role *models.GuestRole) error {
	query := `
		UPDATE guest_roles
		SET name = $2, slug = $3, description = $4, permission = $5, children = $6, updated_at = $7
		WHERE id = $1 AND system = false
	`

	role.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		role.ID, role.Name, role.Slug, role.Description, role.Permission.String(),
		pq.Array(uuidsToStrings(role.Children)), role.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var system bool
	err := r.db.QueryRowContext(ctx, "SELECT system FROM guest_roles WHERE id = $1", id).Scan(&system)
	if err == nil && system {
		return fmt.Errorf("cannot delete system role")
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM guest_roles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("role not found")
	}
	return nil
}

func (r *roleRepository) List(ctx context.Context, filters *interfaces.GuestRoleFilters) ([]*models.GuestRole, error) {
	if filters == nil {
		filters = &interfaces.GuestRoleFilters{Page: 1, PageSize: 20}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	offset := (filters.Page - 1) * filters.PageSize

	query := `
		SELECT id, name, slug, description, permission, system, children, created_at, updated_at
		FROM guest_roles
		WHERE 1=1
	`
	args := []interface{}{}
	argPos := 1

	if filters.System != nil {
		query += fmt.Sprintf(" AND system = $%d", argPos)
		args = append(args, *filters.System)
		argPos++
	}
	if filters.Search != nil {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+*filters.Search+"%")
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*models.GuestRole
	for rows.Next() {
		role, err := r.scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}

	return roles, nil
}

func (r *roleRepository) GetAll(ctx context.Context) ([]*models.GuestRole, error) {
	query := `SELECT id, name, slug, description, permission, system, children, created_at, updated_at FROM guest_roles`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load all roles: %w", err)
	}
	defer rows.Close()

	var roles []*models.GuestRole
	for rows.Next() {
		role, err := r.scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}

	return roles, nil
}

func uuidsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func stringsToUUIDs(ss []string) []uuid.UUID {
	if len(ss) == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}
