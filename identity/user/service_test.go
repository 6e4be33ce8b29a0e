package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, filters *interfaces.UserFilters) ([]*models.User, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserRepo) Count(ctx context.Context, filters *interfaces.UserFilters) (int, error) {
	args := m.Called(ctx, filters)
	return args.Int(0), args.Error(1)
}

func TestService_Create_RejectsWeakPassword(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), &CreateUserRequest{
		Email:    "new.user@example.com",
		Password: "short",
	})
	require.Error(t, err)
}

func TestService_Create_RejectsDuplicateEmail(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	existing := &models.User{ID: uuid.New(), Email: "dup@example.com"}
	repo.On("GetByEmail", mock.Anything, "dup@example.com").Return(existing, nil)

	_, err := svc.Create(context.Background(), &CreateUserRequest{
		Email:    "dup@example.com",
		Password: "correct-horse-battery-staple-9!",
	})
	require.Error(t, err)
	repo.AssertExpectations(t)
}

func TestService_Create_Succeeds(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	repo.On("GetByEmail", mock.Anything, "new.user@example.com").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	u, err := svc.Create(context.Background(), &CreateUserRequest{
		Email:    "New.User@Example.com",
		Password: "correct-horse-battery-staple-9!",
	})
	require.NoError(t, err)
	require.Equal(t, "new.user@example.com", u.Email)
	require.Equal(t, models.ProviderInternal, u.Provider.Kind)
	require.NotEmpty(t, u.Provider.PasswordHash)
	repo.AssertExpectations(t)
}

func TestService_Authenticate_RejectsWrongPassword(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	hash, err := svc.passwordHasher.Hash("correct-horse-battery-staple-9!")
	require.NoError(t, err)

	stored := &models.User{
		ID:       uuid.New(),
		Email:    "auth@example.com",
		IsActive: true,
		Provider: models.Provider{Kind: models.ProviderInternal, PasswordHash: hash},
	}
	repo.On("GetByEmail", mock.Anything, "auth@example.com").Return(stored, nil)

	_, err = svc.Authenticate(context.Background(), "auth@example.com", "wrong-password")
	require.Error(t, err)
}

func TestService_Authenticate_Succeeds(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	hash, err := svc.passwordHasher.Hash("correct-horse-battery-staple-9!")
	require.NoError(t, err)

	stored := &models.User{
		ID:       uuid.New(),
		Email:    "auth@example.com",
		IsActive: true,
		Provider: models.Provider{Kind: models.ProviderInternal, PasswordHash: hash},
	}
	repo.On("GetByEmail", mock.Anything, "auth@example.com").Return(stored, nil)

	u, err := svc.Authenticate(context.Background(), "auth@example.com", "correct-horse-battery-staple-9!")
	require.NoError(t, err)
	require.Equal(t, stored.ID, u.ID)
}

func TestService_Authenticate_RejectsExternalProvider(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	stored := &models.User{
		ID:       uuid.New(),
		Email:    "sso@example.com",
		IsActive: true,
		Provider: models.Provider{Kind: models.ProviderExternal, Issuer: "https://idp.example.com", Subject: "sub-1"},
	}
	repo.On("GetByEmail", mock.Anything, "sso@example.com").Return(stored, nil)

	_, err := svc.Authenticate(context.Background(), "sso@example.com", "anything")
	require.Error(t, err)
}

func TestService_ChangePassword_RejectsExternalProvider(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	id := uuid.New()
	stored := &models.User{
		ID:       id,
		Email:    "sso@example.com",
		Provider: models.Provider{Kind: models.ProviderExternal},
	}
	repo.On("GetByID", mock.Anything, id).Return(stored, nil)

	err := svc.ChangePassword(context.Background(), id, "correct-horse-battery-staple-9!")
	require.Error(t, err)
}

func TestService_ChangePassword_Succeeds(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	id := uuid.New()
	oldHash, err := svc.passwordHasher.Hash("old-correct-horse-battery-staple!")
	require.NoError(t, err)

	stored := &models.User{
		ID:       id,
		Email:    "change@example.com",
		Provider: models.Provider{Kind: models.ProviderInternal, PasswordHash: oldHash},
	}
	repo.On("GetByID", mock.Anything, id).Return(stored, nil)
	repo.On("Update", mock.Anything, stored).Return(nil)

	err = svc.ChangePassword(context.Background(), id, "new-correct-horse-battery-staple!")
	require.NoError(t, err)
	require.NotEqual(t, oldHash, stored.Provider.PasswordHash)
	repo.AssertExpectations(t)
}
