package account

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) Create(ctx context.Context, a *models.Account) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*models.Account)
	return a, args.Error(1)
}
func (m *mockAccountRepo) GetBySlug(ctx context.Context, slug string) (*models.Account, error) {
	args := m.Called(ctx, slug)
	a, _ := args.Get(0).(*models.Account)
	return a, args.Error(1)
}
func (m *mockAccountRepo) Update(ctx context.Context, a *models.Account) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockAccountRepo) List(ctx context.Context, filters *interfaces.AccountFilters) ([]*models.Account, error) {
	args := m.Called(ctx, filters)
	a, _ := args.Get(0).([]*models.Account)
	return a, args.Error(1)
}
func (m *mockAccountRepo) GetByOwnerEmail(ctx context.Context, email string) ([]*models.Account, error) {
	args := m.Called(ctx, email)
	a, _ := args.Get(0).([]*models.Account)
	return a, args.Error(1)
}
func (m *mockAccountRepo) GetOwners(ctx context.Context, accountID uuid.UUID) ([]models.Owner, error) {
	args := m.Called(ctx, accountID)
	o, _ := args.Get(0).([]models.Owner)
	return o, args.Error(1)
}

type mockTenantRepo struct{ mock.Mock }

func (m *mockTenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Tenant)
	return t, args.Error(1)
}
func (m *mockTenantRepo) Update(ctx context.Context, t *models.Tenant) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTenantRepo) AppendStatus(ctx context.Context, id uuid.UUID, status models.TenantStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockTenantRepo) List(ctx context.Context, filters *interfaces.TenantFilters) ([]*models.Tenant, error) {
	args := m.Called(ctx, filters)
	t, _ := args.Get(0).([]*models.Tenant)
	return t, args.Error(1)
}

func TestFetchBaseline_RejectsEmailWithNoAccounts(t *testing.T) {
	accounts := &mockAccountRepo{}
	tenants := &mockTenantRepo{}
	accounts.On("GetByOwnerEmail", mock.Anything, "ghost@example.com").Return([]*models.Account{}, nil)

	f := NewBaselineFetcher(accounts, tenants)
	_, err := f.FetchBaseline(context.Background(), "ghost@example.com")
	require.Error(t, err)
}

func TestFetchBaseline_PicksDefaultUserAccountAndDetectsStaff(t *testing.T) {
	accounts := &mockAccountRepo{}
	tenants := &mockTenantRepo{}

	personal := &models.Account{ID: uuid.New(), Type: models.AccountType{Kind: models.AccountTypeUser}, IsDefault: true}
	staff := &models.Account{ID: uuid.New(), Type: models.AccountType{Kind: models.AccountTypeStaff}}

	accounts.On("GetByOwnerEmail", mock.Anything, "root@example.com").
		Return([]*models.Account{personal, staff}, nil)
	tenants.On("List", mock.Anything, &interfaces.TenantFilters{ManagerAccountID: &personal.ID, Page: 1, PageSize: 100}).
		Return([]*models.Tenant{}, nil)
	accounts.On("GetOwners", mock.Anything, personal.ID).
		Return([]models.Owner{{ID: personal.ID, Email: "root@example.com", IsPrincipal: true}}, nil)

	f := NewBaselineFetcher(accounts, tenants)
	baseline, err := f.FetchBaseline(context.Background(), "root@example.com")
	require.NoError(t, err)
	require.Equal(t, personal.ID, baseline.AccountID)
	require.True(t, baseline.IsStaff)
	require.Len(t, baseline.Owners, 1)
}

func TestFetchBaseline_PopulatesManagedTenants(t *testing.T) {
	accounts := &mockAccountRepo{}
	tenants := &mockTenantRepo{}

	personal := &models.Account{ID: uuid.New(), Type: models.AccountType{Kind: models.AccountTypeUser}, IsDefault: true}
	managedTenantID := uuid.New()

	accounts.On("GetByOwnerEmail", mock.Anything, "manager@example.com").
		Return([]*models.Account{personal}, nil)
	tenants.On("List", mock.Anything, mock.Anything).
		Return([]*models.Tenant{{ID: managedTenantID}}, nil)
	accounts.On("GetOwners", mock.Anything, personal.ID).Return([]models.Owner{}, nil)

	f := NewBaselineFetcher(accounts, tenants)
	baseline, err := f.FetchBaseline(context.Background(), "manager@example.com")
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{managedTenantID}, baseline.ManagedTenants)
}

func TestFetchBaseline_RejectsAccountsWithNoUserKind(t *testing.T) {
	accounts := &mockAccountRepo{}
	tenants := &mockTenantRepo{}

	svc := &models.Account{ID: uuid.New(), Type: models.AccountType{Kind: models.AccountTypeRoleRelated}}
	accounts.On("GetByOwnerEmail", mock.Anything, "weird@example.com").
		Return([]*models.Account{svc}, nil)

	f := NewBaselineFetcher(accounts, tenants)
	_, err := f.FetchBaseline(context.Background(), "weird@example.com")
	require.Error(t, err)
}

func TestFetchBaseline_WrapsRepositoryFailure(t *testing.T) {
	accounts := &mockAccountRepo{}
	tenants := &mockTenantRepo{}
	accounts.On("GetByOwnerEmail", mock.Anything, "x@example.com").
		Return(nil, errors.New("connection reset"))

	f := NewBaselineFetcher(accounts, tenants)
	_, err := f.FetchBaseline(context.Background(), "x@example.com")
	require.Error(t, err)
}
