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

// InvitationRepository implements interfaces.InvitationRepository.
type InvitationRepository struct {
	db *sql.DB
}

// NewInvitationRepository creates a new invitation repository.
func NewInvitationRepository(db *sql.DB) interfaces.InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, invitation *models.GuestInvitation) error {
	query := `
		INSERT INTO guest_invitations (
			id, tenant_id, account_id, email, guest_role_id, permission,
			invited_by, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if invitation.ID == uuid.Nil {
		invitation.ID = uuid.New()
	}
	if invitation.CreatedAt.IsZero() {
		invitation.CreatedAt = now
	}
	if invitation.UpdatedAt.IsZero() {
		invitation.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		invitation.ID, invitation.TenantID, invitation.AccountID, invitation.Email,
		invitation.GuestRoleID, invitation.Permission.String(), invitation.InvitedBy,
		invitation.ExpiresAt, invitation.CreatedAt, invitation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepository) scanInvitation(row interface {
	Scan(dest ...interface{}) error
}) (*models.GuestInvitation, error) {
	invitation := &models.GuestInvitation{}
	var permission string
	var acceptedAt sql.NullTime
	var acceptedBy sql.NullString

	if err := row.Scan(
		&invitation.ID, &invitation.TenantID, &invitation.AccountID, &invitation.Email,
		&invitation.GuestRoleID, &permission, &invitation.InvitedBy, &invitation.ExpiresAt,
		&acceptedAt, &acceptedBy, &invitation.CreatedAt, &invitation.UpdatedAt,
	); err != nil {
		return nil, err
	}

	perm, err := models.ParsePermissionName(permission)
	if err != nil {
		return nil, fmt.Errorf("invalid permission stored for invitation %s: %w", invitation.ID, err)
	}
	invitation.Permission = perm

	if acceptedAt.Valid {
		invitation.AcceptedAt = &acceptedAt.Time
	}
	if acceptedBy.Valid {
		if id, err := uuid.Parse(acceptedBy.String); err == nil {
			invitation.AcceptedBy = &id
		}
	}

	return invitation, nil
}

const invitationColumns = `id, tenant_id, account_id, email, guest_role_id, permission,
	invited_by, expires_at, accepted_at, accepted_by, created_at, updated_at`

func (r *InvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GuestInvitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM guest_invitations WHERE id = $1`, invitationColumns)
	invitation, err := r.scanInvitation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invitation not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return invitation, nil
}

func (r *InvitationRepository) GetPendingByEmailAndAccount(ctx context.Context, accountID uuid.UUID, email string) (*models.GuestInvitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM guest_invitations
		WHERE account_id = $1 AND email = $2 AND accepted_at IS NULL
		ORDER BY created_at DESC LIMIT 1`, invitationColumns)
	invitation, err := r.scanInvitation(r.db.QueryRowContext(ctx, query, accountID, email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invitation not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return invitation, nil
}

func (r *InvitationRepository) List(ctx context.Context, accountID uuid.UUID, filters *interfaces.InvitationFilters) ([]*models.GuestInvitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM guest_invitations WHERE account_id = $1`, invitationColumns)
	args := []interface{}{accountID}
	argIndex := 2

	if filters != nil {
		if filters.Email != "" {
			query += fmt.Sprintf(" AND email = $%d", argIndex)
			args = append(args, filters.Email)
			argIndex++
		}
		if filters.InvitedBy != nil {
			query += fmt.Sprintf(" AND invited_by = $%d", argIndex)
			args = append(args, *filters.InvitedBy)
			argIndex++
		}
		if filters.Accepted != nil {
			if *filters.Accepted {
				query += " AND accepted_at IS NOT NULL"
			} else {
				query += " AND accepted_at IS NULL"
			}
		}
	}

	query += " ORDER BY created_at DESC"

	if filters != nil && filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		offset := (page - 1) * filters.PageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filters.PageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.GuestInvitation
	for rows.Next() {
		invitation, err := r.scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}
	return invitations, rows.Err()
}

func (r *InvitationRepository) Count(ctx context.Context, accountID uuid.UUID, filters *interfaces.InvitationFilters) (int, error) {
	query := `SELECT COUNT(*) FROM guest_invitations WHERE account_id = $1`
	args := []interface{}{accountID}
	argIndex := 2

	if filters != nil {
		if filters.Email != "" {
			query += fmt.Sprintf(" AND email = $%d", argIndex)
			args = append(args, filters.Email)
			argIndex++
		}
		if filters.InvitedBy != nil {
			query += fmt.Sprintf(" AND invited_by = $%d", argIndex)
			args = append(args, *filters.InvitedBy)
			argIndex++
		}
		if filters.Accepted != nil {
			if *filters.Accepted {
				query += " AND accepted_at IS NOT NULL"
			} else {
				query += " AND accepted_at IS NULL"
			}
		}
	}

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count invitations: %w", err)
	}
	return count, nil
}

func (r *InvitationRepository) Update(ctx context.Context, invitation *models.GuestInvitation) error {
	query := `
		UPDATE guest_invitations
		SET email = $1, expires_at = $2, accepted_at = $3, accepted_by = $4, updated_at = $5
		WHERE id = $6
	`

	invitation.UpdatedAt = time.Now()

	var acceptedAt interface{}
	if invitation.AcceptedAt != nil {
		acceptedAt = *invitation.AcceptedAt
	}
	var acceptedBy interface{}
	if invitation.AcceptedBy != nil {
		acceptedBy = *invitation.AcceptedBy
	}

	result, err := r.db.ExecContext(ctx, query,
		invitation.Email, invitation.ExpiresAt, acceptedAt, acceptedBy,
		invitation.UpdatedAt, invitation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("invitation not found")
	}
	return nil
}

func (r *InvitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM guest_invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("invitation not found")
	}
	return nil
}
