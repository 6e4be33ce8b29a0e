package token

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/stretchr/testify/require"
)

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[int64]*models.Token
	nextID int64
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[int64]*models.Token)}
}

func (f *fakeTokenRepo) Create(ctx context.Context, t *models.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	cp := *t
	f.tokens[t.ID] = &cp
	return nil
}

func (f *fakeTokenRepo) GetByID(ctx context.Context, id int64) (*models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenRepo) Revoke(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[id]
	if !ok {
		return nil
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func TestConnectionString_RegisterThenValidate(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := NewConnectionStringService(repo)
	accountID := uuid.New()

	presented, err := svc.Register(context.Background(), models.TokenMetaAccountScopedConnString,
		models.ConnectionStringScope{AccountID: &accountID, Permissions: []models.Permission{models.PermissionWrite}}, time.Hour)
	require.NoError(t, err)

	scope, err := svc.Validate(context.Background(), presented)
	require.NoError(t, err)
	require.Equal(t, accountID, *scope.AccountID)
}

func TestConnectionString_ValidateRejectsTamperedSecret(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := NewConnectionStringService(repo)
	accountID := uuid.New()

	presented, err := svc.Register(context.Background(), models.TokenMetaAccountScopedConnString,
		models.ConnectionStringScope{AccountID: &accountID}, time.Hour)
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), presented+"x")
	require.Error(t, err)
}

func TestConnectionString_InvalidateRejectsFutureValidate(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := NewConnectionStringService(repo)
	tenantID := uuid.New()

	presented, err := svc.Register(context.Background(), models.TokenMetaTenantScopedConnString,
		models.ConnectionStringScope{TenantID: &tenantID}, time.Hour)
	require.NoError(t, err)

	dot := 0
	for i, c := range presented {
		if c == '.' {
			dot = i
			break
		}
	}
	id, err := strconv.ParseInt(presented[:dot], 10, 64)
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(context.Background(), id))

	_, err = svc.Validate(context.Background(), presented)
	require.Error(t, err)

	tok, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, tok, "revoked tokens must remain queryable for audit")
}

func TestConnectionString_ExpiredIsRejected(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := NewConnectionStringService(repo)
	tenantID := uuid.New()

	presented, err := svc.Register(context.Background(), models.TokenMetaTenantScopedConnString,
		models.ConnectionStringScope{TenantID: &tenantID}, -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), presented)
	require.Error(t, err)
}

func TestRegisterCode_ValidateCode(t *testing.T) {
	repo := newFakeTokenRepo()
	svc := NewConnectionStringService(repo)

	id, code, err := svc.RegisterCode(context.Background(), models.TokenMetaEmailConfirmation, time.Hour)
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, svc.ValidateCode(context.Background(), id, code))
	require.Error(t, svc.ValidateCode(context.Background(), id, "000000"))
}
