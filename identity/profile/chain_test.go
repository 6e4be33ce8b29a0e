package profile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_StaffSatisfiesAnyChain(t *testing.T) {
	tenantID := uuid.New()
	accountID := uuid.New()
	p := &models.Profile{Email: "root@example.com", IsStaff: true}

	ra, err := Chain(p).OnTenant(tenantID).OnAccount(accountID).WithWriteAccess().GetIDsOrError()
	require.NoError(t, err)
	assert.Equal(t, models.RelatedAccountsAllowed, ra.Kind)
	assert.Equal(t, []uuid.UUID{accountID}, ra.AccountIDs)
}

func TestChain_ManagerGrantsTenantWideWrite(t *testing.T) {
	tenantID := uuid.New()
	p := &models.Profile{Email: "manager@example.com", IsManager: true}

	ra, err := Chain(p).OnTenant(tenantID).WithWriteAccess().GetIDsOrError()
	require.NoError(t, err)
	assert.Equal(t, models.RelatedAccountsTenant, ra.Kind)
	assert.Equal(t, tenantID, ra.TenantID)
}

func TestChain_UnverifiedLicenseNeverSatisfiesOrdinaryChain(t *testing.T) {
	tenantID := uuid.New()
	accountID := uuid.New()
	p := &models.Profile{
		Email: "guest@example.com",
		LicensedResources: []models.LicensedResource{
			{TenantID: tenantID, AccountID: accountID, GuestRole: "SubscriptionsManager", Permission: models.PermissionWrite, Verified: false},
		},
	}

	_, err := Chain(p).OnTenant(tenantID).WithRoles([]string{"SubscriptionsManager"}).WithWriteAccess().GetIDsOrError()
	require.Error(t, err)
}

func TestChain_RoleScopedSuccess(t *testing.T) {
	tenantID := uuid.New()
	accountID := uuid.New()
	p := &models.Profile{
		Email: "guest@example.com",
		LicensedResources: []models.LicensedResource{
			{TenantID: tenantID, AccountID: accountID, GuestRole: "SubscriptionsManager", Permission: models.PermissionWrite, Verified: true},
		},
	}

	ra, err := Chain(p).OnTenant(tenantID).WithRoles([]string{"SubscriptionsManager"}).WithWriteAccess().GetIDsOrError()
	require.NoError(t, err)
	assert.Equal(t, models.RelatedAccountsAllowed, ra.Kind)
	assert.Contains(t, ra.AccountIDs, accountID)
}

func TestChain_WriteImpliesReadNotViceVersa(t *testing.T) {
	tenantID := uuid.New()
	accountID := uuid.New()
	p := &models.Profile{
		Email: "guest@example.com",
		LicensedResources: []models.LicensedResource{
			{TenantID: tenantID, AccountID: accountID, GuestRole: "Beginner", Permission: models.PermissionRead, Verified: true},
		},
	}

	_, err := Chain(p).OnTenant(tenantID).WithRoles([]string{"Beginner"}).WithReadAccess().GetIDsOrError()
	require.NoError(t, err)

	_, err = Chain(p).OnTenant(tenantID).WithRoles([]string{"Beginner"}).WithWriteAccess().GetIDsOrError()
	require.Error(t, err)
}

func TestChain_NoMatchFailsClosed(t *testing.T) {
	tenantID := uuid.New()
	p := &models.Profile{Email: "nobody@example.com"}

	_, err := Chain(p).OnTenant(tenantID).WithRoles([]string{"SubscriptionsManager"}).WithReadAccess().GetIDsOrError()
	require.Error(t, err)
}

func TestChain_GetRelatedAccountOrError_RejectsTenantWide(t *testing.T) {
	tenantID := uuid.New()
	p := &models.Profile{Email: "manager@example.com", IsManager: true}

	_, err := Chain(p).OnTenant(tenantID).WithWriteAccess().GetRelatedAccountOrError()
	require.Error(t, err)
}

func TestChain_AcceptInvitation_MatchesUnverifiedExactPermission(t *testing.T) {
	tenantID := uuid.New()
	accountID := uuid.New()
	p := &models.Profile{
		Email: "invitee@example.com",
		LicensedResources: []models.LicensedResource{
			{TenantID: tenantID, AccountID: accountID, GuestRole: "GuestsManager", Permission: models.PermissionRead, Verified: false},
		},
	}

	ra, err := Chain(p).OnTenant(tenantID).OnAccount(accountID).
		AcceptInvitation("GuestsManager", models.PermissionRead).
		GetIDsOrError()
	require.NoError(t, err)
	assert.Contains(t, ra.AccountIDs, accountID)
}

func TestChain_GetTenantWidePermissionOrError(t *testing.T) {
	tenantID := uuid.New()
	p := &models.Profile{
		Email: "guest@example.com",
		LicensedResources: []models.LicensedResource{
			{TenantID: tenantID, AccountID: uuid.New(), GuestRole: "GatewayManager", Permission: models.PermissionWrite, Verified: true},
		},
	}

	err := Chain(p).WithRoles([]string{"GatewayManager"}).GetTenantWidePermissionOrError(tenantID, models.PermissionWrite)
	require.NoError(t, err)

	otherTenant := uuid.New()
	err = Chain(p).WithRoles([]string{"GatewayManager"}).GetTenantWidePermissionOrError(otherTenant, models.PermissionWrite)
	require.Error(t, err)
}

func TestChain_GetRelatedAccountsOrTenantWidePermissionOrError_PrefersTenantWide(t *testing.T) {
	tenantID := uuid.New()
	p := &models.Profile{Email: "manager@example.com", IsManager: true}

	ra, err := Chain(p).OnTenant(tenantID).GetRelatedAccountsOrTenantWidePermissionOrError(tenantID, models.PermissionWrite)
	require.NoError(t, err)
	assert.Equal(t, models.RelatedAccountsTenant, ra.Kind)
}
