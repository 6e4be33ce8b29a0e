package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// tokenRepository implements TokenRepository for PostgreSQL.
type tokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new PostgreSQL token repository.
func NewTokenRepository(db *sql.DB) interfaces.TokenRepository {
	return &tokenRepository{db: db}
}

const tokenColumns = `id, kind, code_hash, scope, expires_at, revoked_at, created_at`

func scanToken(row interface {
	Scan(dest ...interface{}) error
}) (*models.Token, error) {
	t := &models.Token{}
	var kind string
	var codeHash sql.NullString
	var scopeJSON []byte
	var revokedAt sql.NullTime

	if err := row.Scan(&t.ID, &kind, &codeHash, &scopeJSON, &t.ExpiresAt, &revokedAt, &t.CreatedAt); err != nil {
		return nil, err
	}

	t.Meta.Kind = models.TokenMetaKind(kind)
	if codeHash.Valid {
		t.Meta.CodeHash = codeHash.String
	}
	if len(scopeJSON) > 0 {
		var scope models.ConnectionStringScope
		if err := json.Unmarshal(scopeJSON, &scope); err != nil {
			return nil, fmt.Errorf("invalid scope stored for token %d: %w", t.ID, err)
		}
		t.Meta.Scope = &scope
	}
	if revokedAt.Valid {
		t.RevokedAt = &revokedAt.Time
	}

	return t, nil
}

// Create inserts a new token, populating its generated id.
func (r *tokenRepository) Create(ctx context.Context, token *models.Token) error {
	var scopeJSON []byte
	if token.Meta.Scope != nil {
		var err error
		scopeJSON, err = json.Marshal(token.Meta.Scope)
		if err != nil {
			return fmt.Errorf("failed to marshal token scope: %w", err)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO tokens (kind, code_hash, scope, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`)
	now := time.Now()
	token.CreatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		string(token.Meta.Kind), nullString(token.Meta.CodeHash), scopeJSON, token.ExpiresAt, now,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// GetByID fetches a token by its numeric id, revoked or not (still
// queryable for audit per spec.md §4.4).
func (r *tokenRepository) GetByID(ctx context.Context, id int64) (*models.Token, error) {
	query := fmt.Sprintf(`SELECT %s FROM tokens WHERE id = $1`, tokenColumns)
	t, err := scanToken(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token %d: %w", id, err)
	}
	return t, nil
}

// Revoke soft-deletes a token by stamping revoked_at.
func (r *tokenRepository) Revoke(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tokens SET revoked_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke token %d: %w", id, err)
	}
	return nil
}
