package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

// ProviderAdapter implements ProviderRepository on a key-value Store
type ProviderAdapter struct {
	store Store
	now   func() time.Time
}

// NewProviderAdapter creates a provider repository backed by store
func NewProviderAdapter(store Store) repositories.ProviderRepository {
	return &ProviderAdapter{store: store, now: time.Now}
}

func providerKey(id string) string {
	return ProviderPrefix + id
}

// Create stores a new provider
func (a *ProviderAdapter) Create(ctx context.Context, provider *entities.ServiceProvider) error {
	provider.Normalize()
	now := a.now().UTC()
	if provider.ID == "" {
		provider.ID = uuid.NewString()
	}
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = now
	}
	provider.UpdatedAt = now

	return a.put(ctx, provider)
}

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.ServiceProvider, error) {
	data, err := a.store.Get(ctx, providerKey(id))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}

	var provider entities.ServiceProvider
	if err := json.Unmarshal(data, &provider); err != nil {
		return nil, apperrors.NewInternalError("failed to decode provider", err)
	}
	provider.Normalize()
	return &provider, nil
}

// GetByIDs retrieves the providers with the given ids, in insertion order
func (a *ProviderAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.ServiceProvider, error) {
	result := make([]*entities.ServiceProvider, 0, len(ids))
	for _, id := range ids {
		provider, err := a.GetByID(ctx, id)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, provider)
	}
	sortByInsertion(result)
	return result, nil
}

// List retrieves every provider in insertion order. Records that cannot be
// decoded are skipped.
func (a *ProviderAdapter) List(ctx context.Context) ([]*entities.ServiceProvider, error) {
	values, err := a.store.ListPrefix(ctx, ProviderPrefix)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list providers", err)
	}

	result := make([]*entities.ServiceProvider, 0, len(values))
	for _, value := range values {
		var provider entities.ServiceProvider
		if err := json.Unmarshal(value, &provider); err != nil || provider.ID == "" {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Skipping undecodable provider record")
			continue
		}
		provider.Normalize()
		result = append(result, &provider)
	}
	sortByInsertion(result)
	return result, nil
}

// Update applies a partial update to a stored provider
func (a *ProviderAdapter) Update(ctx context.Context, id string, patch entities.ProviderPatch) (*entities.ServiceProvider, error) {
	current, err := a.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(current)
	updated.Normalize()
	updated.UpdatedAt = a.now().UTC()

	if err := a.put(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a provider
func (a *ProviderAdapter) Delete(ctx context.Context, id string) error {
	existed, err := a.store.Delete(ctx, providerKey(id))
	if err != nil {
		return apperrors.NewInternalError("failed to delete provider", err)
	}
	if !existed {
		return apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	return nil
}

// Count returns the number of stored providers
func (a *ProviderAdapter) Count(ctx context.Context) (int, error) {
	n, err := a.store.CountPrefix(ctx, ProviderPrefix)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count providers", err)
	}
	return n, nil
}

func (a *ProviderAdapter) put(ctx context.Context, provider *entities.ServiceProvider) error {
	data, err := json.Marshal(provider)
	if err != nil {
		return apperrors.NewInternalError("failed to encode provider", err)
	}
	if err := a.store.Set(ctx, providerKey(provider.ID), data); err != nil {
		return apperrors.NewInternalError("failed to store provider", err)
	}
	return nil
}

// sortByInsertion orders by creation time, then id, since prefix listing
// returns keys in no particular order.
func sortByInsertion(list []*entities.ServiceProvider) {
	slices.SortStableFunc(list, func(x, y *entities.ServiceProvider) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		}
		return 0
	})
}
