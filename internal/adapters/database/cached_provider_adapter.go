package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/providers"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
)

// CachedProviderAdapter wraps a ProviderRepository with cache-aside reads.
// Writes invalidate before returning so a following List sees them.
type CachedProviderAdapter struct {
	adapter repositories.ProviderRepository
	cache   providers.CacheProvider
}

// NewCachedProviderAdapter creates a new cached provider adapter
func NewCachedProviderAdapter(adapter repositories.ProviderRepository, cache providers.CacheProvider) repositories.ProviderRepository {
	return &CachedProviderAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

const (
	providerByIDTTL  = 5 * time.Minute
	providersListTTL = 3 * time.Minute

	providersListCacheKey = "providers:list"
)

func providerCacheKey(id string) string {
	return "provider:" + id
}

// GetByID retrieves a provider by ID with caching
func (a *CachedProviderAdapter) GetByID(ctx context.Context, id string) (*entities.ServiceProvider, error) {
	cacheKey := providerCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var provider entities.ServiceProvider
		if err := json.Unmarshal(cached, &provider); err == nil {
			return &provider, nil
		}
		observability.LoggerFromContext(ctx).Warn().Str("provider_id", id).Msg("Discarding undecodable cached provider")
	}

	provider, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.store(ctx, cacheKey, provider, providerByIDTTL)
	return provider, nil
}

// GetByIDs is served from the cached list
func (a *CachedProviderAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.ServiceProvider, error) {
	if len(ids) == 0 {
		return []*entities.ServiceProvider{}, nil
	}

	all, err := a.List(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	result := make([]*entities.ServiceProvider, 0, len(ids))
	for _, p := range all {
		if _, ok := wanted[p.ID]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// List retrieves every provider with caching
func (a *CachedProviderAdapter) List(ctx context.Context) ([]*entities.ServiceProvider, error) {
	if cached, err := a.cache.Get(ctx, providersListCacheKey); err == nil {
		var list []*entities.ServiceProvider
		if err := json.Unmarshal(cached, &list); err == nil {
			return list, nil
		}
		observability.LoggerFromContext(ctx).Warn().Msg("Discarding undecodable cached provider list")
	}

	list, err := a.adapter.List(ctx)
	if err != nil {
		return nil, err
	}

	a.store(ctx, providersListCacheKey, list, providersListTTL)
	return list, nil
}

// Create creates a provider and invalidates the list cache
func (a *CachedProviderAdapter) Create(ctx context.Context, provider *entities.ServiceProvider) error {
	if err := a.adapter.Create(ctx, provider); err != nil {
		return err
	}
	a.invalidate(ctx, providersListCacheKey)
	return nil
}

// Update updates a provider and invalidates its cache entries
func (a *CachedProviderAdapter) Update(ctx context.Context, id string, patch entities.ProviderPatch) (*entities.ServiceProvider, error) {
	updated, err := a.adapter.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, providerCacheKey(id), providersListCacheKey)
	return updated, nil
}

// Delete deletes a provider and invalidates its cache entries
func (a *CachedProviderAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, providerCacheKey(id), providersListCacheKey)
	return nil
}

// Count is not cached
func (a *CachedProviderAdapter) Count(ctx context.Context) (int, error) {
	return a.adapter.Count(ctx)
}

func (a *CachedProviderAdapter) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to cache value")
	}
}

func (a *CachedProviderAdapter) invalidate(ctx context.Context, keys ...string) {
	if err := a.cache.Delete(ctx, keys...); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Strs("keys", keys).Msg("Failed to invalidate provider cache")
	}
}
