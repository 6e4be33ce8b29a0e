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

// userRepository implements UserRepository for PostgreSQL.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) interfaces.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, username,
	provider_kind, password_hash, issuer, subject, is_active, created_at, updated_at`

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*models.User, error) {
	u := &models.User{}
	var firstName, lastName, username, issuer, subject sql.NullString

	if err := row.Scan(
		&u.ID, &u.Email, &firstName, &lastName, &username,
		&u.Provider.Kind, &u.Provider.PasswordHash, &issuer, &subject,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if firstName.Valid {
		u.FirstName = &firstName.String
	}
	if lastName.Valid {
		u.LastName = &lastName.String
	}
	if username.Valid {
		u.Username = &username.String
	}
	if issuer.Valid {
		u.Provider.Issuer = issuer.String
	}
	if subject.Valid {
		u.Provider.Subject = subject.String
	}

	return u, nil
}

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (
			id, email, first_name, last_name, username,
			provider_kind, password_hash, issuer, subject,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.Username,
		u.Provider.Kind, u.Provider.PasswordHash, u.Provider.Issuer, u.Provider.Subject,
		u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, models.NormalizeEmail(email)))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, username = $5,
		    provider_kind = $6, password_hash = $7, issuer = $8, subject = $9,
		    is_active = $10, updated_at = $11
		WHERE id = $1
	`

	u.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.Username,
		u.Provider.Kind, u.Provider.PasswordHash, u.Provider.Issuer, u.Provider.Subject,
		u.IsActive, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete hard-deletes a user.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// List retrieves a list of users with filters.
func (r *userRepository) List(ctx context.Context, filters *interfaces.UserFilters) ([]*models.User, error) {
	if filters == nil {
		filters = &interfaces.UserFilters{Page: 1, PageSize: 20}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`SELECT %s FROM users WHERE 1=1`, userColumns)
	args := []interface{}{}
	argPos := 1

	if filters.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argPos)
		args = append(args, *filters.IsActive)
		argPos++
	}
	if filters.Search != nil {
		query += fmt.Sprintf(" AND (username ILIKE $%d OR email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argPos, argPos, argPos, argPos)
		searchPattern := "%" + *filters.Search + "%"
		args = append(args, searchPattern, searchPattern, searchPattern, searchPattern)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count returns the total count of users matching filters.
func (r *userRepository) Count(ctx context.Context, filters *interfaces.UserFilters) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filters != nil {
		if filters.IsActive != nil {
			query += fmt.Sprintf(" AND is_active = $%d", argPos)
			args = append(args, *filters.IsActive)
			argPos++
		}
		if filters.Search != nil {
			query += fmt.Sprintf(" AND (username ILIKE $%d OR email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
				argPos, argPos, argPos, argPos)
			searchPattern := "%" + *filters.Search + "%"
			args = append(args, searchPattern, searchPattern, searchPattern, searchPattern)
		}
	}

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
