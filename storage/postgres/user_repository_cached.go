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

// cachedUserRepository wraps UserRepository with caching.
type cachedUserRepository struct {
	repo     interfaces.UserRepository
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewCachedUserRepository creates a cached user repository.
func NewCachedUserRepository(repo interfaces.UserRepository, cacheClient *cache.Cache) interfaces.UserRepository {
	if cacheClient == nil {
		return repo
	}

	return &cachedUserRepository{
		repo:     repo,
		cache:    cacheClient,
		cacheTTL: 5 * time.Minute,
	}
}

func (r *cachedUserRepository) cacheKey(operation string, params ...interface{}) string {
	key := fmt.Sprintf("user:%s", operation)
	for _, p := range params {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

func (r *cachedUserRepository) Create(ctx context.Context, u *models.User) error {
	if err := r.repo.Create(ctx, u); err != nil {
		return err
	}
	r.invalidateUserCache(ctx, u.ID, u.Username, u.Email)
	return nil
}

func (r *cachedUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	key := r.cacheKey("id", id.String())

	var cached *models.User
	if err := r.cache.Get(ctx, key, &cached); err == nil && cached != nil {
		return cached, nil
	}

	u, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u != nil {
		r.cache.Set(ctx, key, u, r.cacheTTL)
	}
	return u, nil
}

func (r *cachedUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	key := r.cacheKey("username", username)

	var cached *models.User
	if err := r.cache.Get(ctx, key, &cached); err == nil && cached != nil {
		return cached, nil
	}

	u, err := r.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u != nil {
		r.cache.Set(ctx, key, u, r.cacheTTL)
		r.cache.Set(ctx, r.cacheKey("id", u.ID.String()), u, r.cacheTTL)
	}
	return u, nil
}

func (r *cachedUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	key := r.cacheKey("email", email)

	var cached *models.User
	if err := r.cache.Get(ctx, key, &cached); err == nil && cached != nil {
		return cached, nil
	}

	u, err := r.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		r.cache.Set(ctx, key, u, r.cacheTTL)
		r.cache.Set(ctx, r.cacheKey("id", u.ID.String()), u, r.cacheTTL)
	}
	return u, nil
}

func (r *cachedUserRepository) Update(ctx context.Context, u *models.User) error {
	oldUser, _ := r.repo.GetByID(ctx, u.ID)

	if err := r.repo.Update(ctx, u); err != nil {
		return err
	}

	if oldUser != nil {
		r.invalidateUserCache(ctx, u.ID, oldUser.Username, oldUser.Email)
	}
	r.invalidateUserCache(ctx, u.ID, u.Username, u.Email)
	return nil
}

func (r *cachedUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	u, _ := r.repo.GetByID(ctx, id)

	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	if u != nil {
		r.invalidateUserCache(ctx, id, u.Username, u.Email)
	}
	return nil
}

// List is not cached: pagination and filtering make it a poor cache key.
func (r *cachedUserRepository) List(ctx context.Context, filters *interfaces.UserFilters) ([]*models.User, error) {
	return r.repo.List(ctx, filters)
}

func (r *cachedUserRepository) Count(ctx context.Context, filters *interfaces.UserFilters) (int, error) {
	return r.repo.Count(ctx, filters)
}

func (r *cachedUserRepository) invalidateUserCache(ctx context.Context, userID uuid.UUID, username *string, email string) {
	keys := []string{r.cacheKey("id", userID.String())}
	if username != nil {
		keys = append(keys, r.cacheKey("username", *username))
	}
	if email != "" {
		keys = append(keys, r.cacheKey("email", email))
	}
	for _, key := range keys {
		r.cache.Delete(ctx, key)
	}
}
