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

// accountRepository implements AccountRepository for PostgreSQL.
type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(db *sql.DB) interfaces.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, slug, name, type_kind, tenant_id, guest_role_id,
	is_active, is_checked, is_archived, is_default, tags, metadata,
	created_at, updated_at`

func scanAccount(row interface {
	Scan(dest ...interface{}) error
}) (*models.Account, error) {
	a := &models.Account{}
	var tenantID, guestRoleID uuid.NullUUID
	var tags pq.StringArray
	var metadataJSON []byte

	if err := row.Scan(
		&a.ID, &a.Slug, &a.Name, &a.Type.Kind, &tenantID, &guestRoleID,
		&a.IsActive, &a.IsChecked, &a.IsArchived, &a.IsDefault, &tags, &metadataJSON,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if tenantID.Valid {
		a.Type.TenantID = &tenantID.UUID
	}
	if guestRoleID.Valid {
		a.Type.GuestRoleID = &guestRoleID.UUID
	}
	a.Tags = []string(tags)

	if len(metadataJSON) > 0 {
		var meta map[string]string
		if err := json.Unmarshal(metadataJSON, &meta); err != nil {
			return nil, fmt.Errorf("invalid metadata stored for account %s: %w", a.ID, err)
		}
		a.Metadata = meta
	}

	return a, nil
}

func marshalAccountMetadata(a *models.Account) ([]byte, error) {
	if a.Metadata == nil {
		return nil, nil
	}
	b, err := json.Marshal(a.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account metadata: %w", err)
	}
	return b, nil
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, a *models.Account) error {
	query := fmt.Sprintf(`INSERT INTO accounts (%s) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`, accountColumns)

	now := time.Now()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	if a.Slug == "" {
		a.Slug = models.Slugify(a.Name)
	}

	metaJSON, err := marshalAccountMetadata(a)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.Slug, a.Name, a.Type.Kind, a.Type.TenantID, a.Type.GuestRoleID,
		a.IsActive, a.IsChecked, a.IsArchived, a.IsDefault,
		pq.Array(a.Tags), metaJSON, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// GetBySlug retrieves an account by its slug.
func (r *accountRepository) GetBySlug(ctx context.Context, slug string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE slug = $1`, accountColumns)
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by slug: %w", err)
	}
	return a, nil
}

// Update updates an existing account.
func (r *accountRepository) Update(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE accounts
		SET slug = $2, name = $3, type_kind = $4, tenant_id = $5, guest_role_id = $6,
		    is_active = $7, is_checked = $8, is_archived = $9, is_default = $10,
		    tags = $11, metadata = $12, updated_at = $13
		WHERE id = $1
	`
	a.UpdatedAt = time.Now()

	metaJSON, err := marshalAccountMetadata(a)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.Slug, a.Name, a.Type.Kind, a.Type.TenantID, a.Type.GuestRoleID,
		a.IsActive, a.IsChecked, a.IsArchived, a.IsDefault,
		pq.Array(a.Tags), metaJSON, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// Delete soft-deletes an account via SoftDelete's slug-renaming convention.
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	a.SoftDelete()
	return r.Update(ctx, a)
}

// List retrieves a list of accounts with filters.
func (r *accountRepository) List(ctx context.Context, filters *interfaces.AccountFilters) ([]*models.Account, error) {
	if filters == nil {
		filters = &interfaces.AccountFilters{Page: 1, PageSize: 20}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE 1=1`, accountColumns)
	args := []interface{}{}
	argPos := 1

	if filters.TypeKind != nil {
		query += fmt.Sprintf(" AND type_kind = $%d", argPos)
		args = append(args, *filters.TypeKind)
		argPos++
	}
	if filters.TenantID != nil {
		query += fmt.Sprintf(" AND tenant_id = $%d", argPos)
		args = append(args, *filters.TenantID)
		argPos++
	}
	if filters.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argPos)
		args = append(args, *filters.IsActive)
		argPos++
	}
	if filters.Search != nil {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR slug ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+*filters.Search+"%")
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetByOwnerEmail returns every account owned or co-owned by email, joining
// through account_owners (many-to-many: a Subscription-kind account may
// have several owners; a plain User-kind account has exactly one).
func (r *accountRepository) GetByOwnerEmail(ctx context.Context, email string) ([]*models.Account, error) {
	const accountColumnsQualified = `a.id, a.slug, a.name, a.type_kind, a.tenant_id, a.guest_role_id,
		a.is_active, a.is_checked, a.is_archived, a.is_default, a.tags, a.metadata,
		a.created_at, a.updated_at`
	query := fmt.Sprintf(`
		SELECT %s FROM accounts a
		JOIN account_owners ao ON ao.account_id = a.id
		JOIN users u ON u.id = ao.user_id
		WHERE u.email = $1
	`, accountColumnsQualified)

	rows, err := r.db.QueryContext(ctx, query, models.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts by owner email: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetOwners returns the owner projection for an account.
func (r *accountRepository) GetOwners(ctx context.Context, accountID uuid.UUID) ([]models.Owner, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.username, ao.is_principal
		FROM account_owners ao
		JOIN users u ON u.id = ao.user_id
		WHERE ao.account_id = $1
		ORDER BY ao.is_principal DESC, u.email ASC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account owners: %w", err)
	}
	defer rows.Close()

	var owners []models.Owner
	for rows.Next() {
		var o models.Owner
		var firstName, lastName, username sql.NullString
		if err := rows.Scan(&o.ID, &o.Email, &firstName, &lastName, &username, &o.IsPrincipal); err != nil {
			return nil, fmt.Errorf("failed to scan account owner: %w", err)
		}
		if firstName.Valid {
			o.FirstName = &firstName.String
		}
		if lastName.Valid {
			o.LastName = &lastName.String
		}
		if username.Valid {
			o.Username = &username.String
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}
