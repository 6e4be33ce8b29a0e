package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/internal/errs"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// LicenseFetcher implements profile.LicensedResourcesFetching against the
// LicensedResource repository.
type LicenseFetcher struct {
	repo interfaces.LicensedResourceRepository
}

// NewLicenseFetcher creates a new LicenseFetcher.
func NewLicenseFetcher(repo interfaces.LicensedResourceRepository) *LicenseFetcher {
	return &LicenseFetcher{repo: repo}
}

// FetchLicensedResources returns email's licenses, narrowed to tenantID
// when given. The repository only exposes an all-tenants fetch, so the
// narrowing happens here rather than pushing a new query down.
func (f *LicenseFetcher) FetchLicensedResources(ctx context.Context, email string, tenantID *uuid.UUID) ([]models.LicensedResource, error) {
	all, err := f.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "failed to fetch licensed resources", err)
	}
	if tenantID == nil {
		return all, nil
	}

	filtered := make([]models.LicensedResource, 0, len(all))
	for _, lr := range all {
		if lr.TenantID == *tenantID {
			filtered = append(filtered, lr)
		}
	}
	return filtered, nil
}
