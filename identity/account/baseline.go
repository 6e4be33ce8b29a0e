// Package account resolves the data the Profile Evaluator needs but does
// not itself fetch: an authenticated email's accounts, staff/manager
// status, and co-owners (spec.md §4.1, original_source's
// `fetch_profile_from_email`).
package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/identity/profile"
	"github.com/lepista-tech/mycelium/internal/errs"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// BaselineFetcher implements profile.BaselineFetching against the Account
// and Tenant repositories.
type BaselineFetcher struct {
	accounts interfaces.AccountRepository
	tenants  interfaces.TenantRepository
}

// NewBaselineFetcher creates a new BaselineFetcher.
func NewBaselineFetcher(accounts interfaces.AccountRepository, tenants interfaces.TenantRepository) *BaselineFetcher {
	return &BaselineFetcher{accounts: accounts, tenants: tenants}
}

// FetchBaseline resolves email's primary account, staff flag, managed
// tenants and account co-owners in one pass.
func (f *BaselineFetcher) FetchBaseline(ctx context.Context, email string) (*profile.Baseline, error) {
	accounts, err := f.accounts.GetByOwnerEmail(ctx, email)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "failed to fetch accounts for email", err)
	}
	if len(accounts) == 0 {
		return nil, errs.NotFound("no account is registered for this email")
	}

	primary := primaryAccount(accounts)
	if primary == nil {
		return nil, errs.New(errs.KindInternal, "email has accounts but none of User kind")
	}

	isStaff := false
	for _, a := range accounts {
		if a.Type.Kind == models.AccountTypeStaff {
			isStaff = true
			break
		}
	}

	managedTenants, err := f.tenants.List(ctx, &interfaces.TenantFilters{
		ManagerAccountID: &primary.ID,
		Page:             1,
		PageSize:         100,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "failed to fetch managed tenants", err)
	}

	managedIDs := make([]uuid.UUID, 0, len(managedTenants))
	for _, t := range managedTenants {
		managedIDs = append(managedIDs, t.ID)
	}

	owners, err := f.accounts.GetOwners(ctx, primary.ID)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "failed to fetch account owners", err)
	}

	return &profile.Baseline{
		AccountID:      primary.ID,
		IsStaff:        isStaff,
		ManagedTenants: managedIDs,
		Owners:         owners,
	}, nil
}

// primaryAccount picks the account the Profile's acc_id field identifies:
// the default User-kind account if one is flagged, otherwise the first
// User-kind account found.
func primaryAccount(accounts []*models.Account) *models.Account {
	var fallback *models.Account
	for _, a := range accounts {
		if a.Type.Kind != models.AccountTypeUser {
			continue
		}
		if a.IsDefault {
			return a
		}
		if fallback == nil {
			fallback = a
		}
	}
	return fallback
}
