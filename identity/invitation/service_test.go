package invitation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInvitationRepo struct {
	mock.Mock
}

func (m *mockInvitationRepo) Create(ctx context.Context, inv *models.GuestInvitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *mockInvitationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.GuestInvitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestInvitation), args.Error(1)
}

func (m *mockInvitationRepo) GetPendingByEmailAndAccount(ctx context.Context, accountID uuid.UUID, email string) (*models.GuestInvitation, error) {
	args := m.Called(ctx, accountID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestInvitation), args.Error(1)
}

func (m *mockInvitationRepo) List(ctx context.Context, accountID uuid.UUID, filters *interfaces.InvitationFilters) ([]*models.GuestInvitation, error) {
	args := m.Called(ctx, accountID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GuestInvitation), args.Error(1)
}

func (m *mockInvitationRepo) Count(ctx context.Context, accountID uuid.UUID, filters *interfaces.InvitationFilters) (int, error) {
	args := m.Called(ctx, accountID, filters)
	return args.Int(0), args.Error(1)
}

func (m *mockInvitationRepo) Update(ctx context.Context, inv *models.GuestInvitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *mockInvitationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockLicenseRepo struct {
	mock.Mock
}

func (m *mockLicenseRepo) Create(ctx context.Context, resource *models.LicensedResource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *mockLicenseRepo) GetByAccountAndEmail(ctx context.Context, accountID uuid.UUID, email string) ([]models.LicensedResource, error) {
	args := m.Called(ctx, accountID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LicensedResource), args.Error(1)
}

func (m *mockLicenseRepo) GetByEmail(ctx context.Context, email string) ([]models.LicensedResource, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LicensedResource), args.Error(1)
}

func (m *mockLicenseRepo) Verify(ctx context.Context, tenantID, accountID uuid.UUID, email, guestRole string, permission models.Permission) error {
	args := m.Called(ctx, tenantID, accountID, email, guestRole, permission)
	return args.Error(0)
}

func (m *mockLicenseRepo) Delete(ctx context.Context, tenantID, accountID uuid.UUID, email, guestRole string) error {
	args := m.Called(ctx, tenantID, accountID, email, guestRole)
	return args.Error(0)
}

func TestCreateInvitation(t *testing.T) {
	invRepo := new(mockInvitationRepo)
	licRepo := new(mockLicenseRepo)
	svc := NewService(invRepo, licRepo)

	req := &CreateInvitationRequest{
		TenantID:    uuid.New(),
		AccountID:   uuid.New(),
		Email:       "guest@example.com",
		GuestRoleID: uuid.New(),
		RoleName:    "viewer",
		Permission:  "read",
		InvitedBy:   uuid.New(),
	}

	invRepo.On("GetPendingByEmailAndAccount", mock.Anything, req.AccountID, "guest@example.com").
		Return(nil, nil)
	invRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.GuestInvitation")).Return(nil)
	licRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.LicensedResource")).Return(nil)

	got, err := svc.CreateInvitation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.TenantID, got.TenantID)
	assert.Equal(t, models.PermissionRead, got.Permission)
	assert.False(t, got.IsAccepted())
	invRepo.AssertExpectations(t)
	licRepo.AssertExpectations(t)
}

func TestCreateInvitation_RejectsDuplicatePending(t *testing.T) {
	invRepo := new(mockInvitationRepo)
	licRepo := new(mockLicenseRepo)
	svc := NewService(invRepo, licRepo)

	accountID := uuid.New()
	existing := &models.GuestInvitation{
		ID:        uuid.New(),
		AccountID: accountID,
		Email:     "guest@example.com",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	req := &CreateInvitationRequest{
		TenantID:    uuid.New(),
		AccountID:   accountID,
		Email:       "guest@example.com",
		GuestRoleID: uuid.New(),
		RoleName:    "viewer",
		Permission:  "read",
		InvitedBy:   uuid.New(),
	}

	invRepo.On("GetPendingByEmailAndAccount", mock.Anything, accountID, "guest@example.com").
		Return(existing, nil)

	_, err := svc.CreateInvitation(context.Background(), req)
	require.Error(t, err)
	invRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAcceptInvitation(t *testing.T) {
	invRepo := new(mockInvitationRepo)
	licRepo := new(mockLicenseRepo)
	svc := NewService(invRepo, licRepo)

	id := uuid.New()
	acceptedBy := uuid.New()
	pending := &models.GuestInvitation{
		ID:         id,
		TenantID:   uuid.New(),
		AccountID:  uuid.New(),
		Email:      "guest@example.com",
		Permission: models.PermissionRead,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}

	invRepo.On("GetByID", mock.Anything, id).Return(pending, nil)
	invRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.GuestInvitation")).Return(nil)
	licRepo.On("Verify", mock.Anything, pending.TenantID, pending.AccountID, pending.Email, "viewer", models.PermissionRead).
		Return(nil)

	got, err := svc.AcceptInvitation(context.Background(), id, acceptedBy, "viewer")
	require.NoError(t, err)
	assert.True(t, got.IsAccepted())
	assert.Equal(t, acceptedBy, *got.AcceptedBy)
	invRepo.AssertExpectations(t)
	licRepo.AssertExpectations(t)
}

func TestAcceptInvitation_RejectsExpired(t *testing.T) {
	invRepo := new(mockInvitationRepo)
	licRepo := new(mockLicenseRepo)
	svc := NewService(invRepo, licRepo)

	id := uuid.New()
	expired := &models.GuestInvitation{
		ID:        id,
		Email:     "guest@example.com",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	invRepo.On("GetByID", mock.Anything, id).Return(expired, nil)

	_, err := svc.AcceptInvitation(context.Background(), id, uuid.New(), "viewer")
	require.Error(t, err)
	invRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteInvitation(t *testing.T) {
	invRepo := new(mockInvitationRepo)
	licRepo := new(mockLicenseRepo)
	svc := NewService(invRepo, licRepo)

	id := uuid.New()
	invRepo.On("Delete", mock.Anything, id).Return(nil)

	err := svc.DeleteInvitation(context.Background(), id)
	require.NoError(t, err)
	invRepo.AssertExpectations(t)
}
