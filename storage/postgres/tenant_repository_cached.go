package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/internal/cache"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// cachedTenantRepository wraps TenantRepository with caching
type cachedTenantRepository struct {
	repo     interfaces.TenantRepository
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewCachedTenantRepository creates a cached tenant repository
func NewCachedTenantRepository(repo interfaces.TenantRepository, cacheClient *cache.Cache) interfaces.TenantRepository {
	if cacheClient == nil {
		return repo // Return unwrapped repository if no cache
	}

	return &cachedTenantRepository{
		repo:     repo,
		cache:    cacheClient,
		cacheTTL: 10 * time.Minute, // Tenants change less frequently
	}
}

// cacheKey generates a cache key for tenant operations
func (r *cachedTenantRepository) cacheKey(operation string, params ...interface{}) string {
	key := fmt.Sprintf("tenant:%s", operation)
	for _, p := range params {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

// Create creates a new tenant
func (r *cachedTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	err := r.repo.Create(ctx, tenant)
	if err != nil {
		return err
	}

	r.invalidateTenantCache(ctx, tenant.ID)
	return nil
}

// GetByID retrieves a tenant by ID with caching
func (r *cachedTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	cacheKey := r.cacheKey("id", id.String())

	// Try to get from cache
	var cachedTenant *models.Tenant
	err := r.cache.Get(ctx, cacheKey, &cachedTenant)
	if err == nil && cachedTenant != nil {
		return cachedTenant, nil
	}

	// Get from database
	tenant, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if tenant != nil {
		_ = r.cache.Set(ctx, cacheKey, tenant, r.cacheTTL) // Ignore cache errors
	}

	return tenant, nil
}

// Update updates an existing tenant
func (r *cachedTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	err := r.repo.Update(ctx, tenant)
	if err != nil {
		return err
	}

	r.invalidateTenantCache(ctx, tenant.ID)
	return nil
}

// AppendStatus pushes a new status onto the tenant's timeline and
// invalidates the cached entry so the next read reflects it.
func (r *cachedTenantRepository) AppendStatus(ctx context.Context, id uuid.UUID, status models.TenantStatus) error {
	err := r.repo.AppendStatus(ctx, id, status)
	if err != nil {
		return err
	}

	r.invalidateTenantCache(ctx, id)
	return nil
}

// List retrieves a list of tenants (not cached due to pagination)
func (r *cachedTenantRepository) List(ctx context.Context, filters *interfaces.TenantFilters) ([]*models.Tenant, error) {
	// List operations are not cached due to pagination and filtering complexity
	return r.repo.List(ctx, filters)
}

// invalidateTenantCache invalidates all cache entries for a tenant
func (r *cachedTenantRepository) invalidateTenantCache(ctx context.Context, tenantID uuid.UUID) {
	_ = r.cache.Delete(ctx, r.cacheKey("id", tenantID.String())) // Ignore cache errors
}
