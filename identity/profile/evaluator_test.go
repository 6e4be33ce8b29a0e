package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBaselineFetching struct{ mock.Mock }

func (m *mockBaselineFetching) FetchBaseline(ctx context.Context, email string) (*Baseline, error) {
	args := m.Called(ctx, email)
	if b, ok := args.Get(0).(*Baseline); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLicensedResourcesFetching struct{ mock.Mock }

func (m *mockLicensedResourcesFetching) FetchLicensedResources(ctx context.Context, email string, tenantID *uuid.UUID) ([]models.LicensedResource, error) {
	args := m.Called(ctx, email, tenantID)
	if lrs, ok := args.Get(0).([]models.LicensedResource); ok {
		return lrs, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestEvaluate_RejectsEmptyEmail(t *testing.T) {
	ev := NewEvaluator(&mockBaselineFetching{}, &mockLicensedResourcesFetching{})
	_, err := ev.Evaluate(context.Background(), "", nil)
	require.Error(t, err)
}

func TestEvaluate_SetsIsManagerOnlyWhenTenantIsManaged(t *testing.T) {
	tenantID := uuid.New()
	accountID := uuid.New()

	baselines := &mockBaselineFetching{}
	licenses := &mockLicensedResourcesFetching{}

	baselines.On("FetchBaseline", mock.Anything, "manager@example.com").
		Return(&Baseline{AccountID: accountID, ManagedTenants: []uuid.UUID{tenantID}}, nil)
	licenses.On("FetchLicensedResources", mock.Anything, "manager@example.com", &tenantID).
		Return([]models.LicensedResource{}, nil)

	ev := NewEvaluator(baselines, licenses)
	p, err := ev.Evaluate(context.Background(), "manager@example.com", &tenantID)
	require.NoError(t, err)
	require.True(t, p.IsManager)

	otherTenant := uuid.New()
	licenses.On("FetchLicensedResources", mock.Anything, "manager@example.com", &otherTenant).
		Return([]models.LicensedResource{}, nil)
	p2, err := ev.Evaluate(context.Background(), "manager@example.com", &otherTenant)
	require.NoError(t, err)
	require.False(t, p2.IsManager)
}

func TestEvaluate_PropagatesStaffFlagAndLicenses(t *testing.T) {
	accountID := uuid.New()
	tenantID := uuid.New()

	baselines := &mockBaselineFetching{}
	licenses := &mockLicensedResourcesFetching{}

	baselines.On("FetchBaseline", mock.Anything, "root@example.com").
		Return(&Baseline{AccountID: accountID, IsStaff: true}, nil)
	lrs := []models.LicensedResource{{TenantID: tenantID, AccountID: accountID, GuestRole: "SystemManager", Permission: models.PermissionWrite, Verified: true}}
	licenses.On("FetchLicensedResources", mock.Anything, "root@example.com", &tenantID).Return(lrs, nil)

	ev := NewEvaluator(baselines, licenses)
	p, err := ev.Evaluate(context.Background(), "root@example.com", &tenantID)
	require.NoError(t, err)
	require.True(t, p.IsStaff)
	require.Equal(t, lrs, p.LicensedResources)
}

func TestEvaluate_WrapsBaselineFailureAsInternal(t *testing.T) {
	baselines := &mockBaselineFetching{}
	licenses := &mockLicensedResourcesFetching{}
	baselines.On("FetchBaseline", mock.Anything, "x@example.com").Return(nil, errors.New("baseline lookup failed"))

	ev := NewEvaluator(baselines, licenses)
	_, err := ev.Evaluate(context.Background(), "x@example.com", nil)
	require.Error(t, err)
}
