package loaders

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

// batchWait is how long a loader collects keys before querying the store
const batchWait = 5 * time.Millisecond

// Loaders contains all the dataloaders for the application
type Loaders struct {
	ProviderLoader *dataloader.Loader[string, *entities.ServiceProvider]
}

// NewLoaders creates a new instance of Loaders. Loaded providers are cached
// for the lifetime of the Loaders value, so keep it short-lived.
func NewLoaders(providerRepo repositories.ProviderRepository) *Loaders {
	return &Loaders{
		ProviderLoader: dataloader.NewBatchedLoader(
			batchProviders(providerRepo),
			dataloader.WithWait[string, *entities.ServiceProvider](batchWait),
		),
	}
}

func batchProviders(repo repositories.ProviderRepository) dataloader.BatchFunc[string, *entities.ServiceProvider] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[*entities.ServiceProvider] {
		results := make([]*dataloader.Result[*entities.ServiceProvider], len(keys))
		providers, err := repo.GetByIDs(ctx, keys)

		byID := make(map[string]*entities.ServiceProvider, len(providers))
		if err == nil {
			for _, p := range providers {
				byID[p.ID] = p
			}
		}

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[*entities.ServiceProvider]{Error: err}
			} else if p, ok := byID[key]; ok {
				results[i] = &dataloader.Result[*entities.ServiceProvider]{Data: p}
			} else {
				results[i] = &dataloader.Result[*entities.ServiceProvider]{Error: apperrors.NewNotFoundError("provider with id " + key + " not found")}
			}
		}
		return results
	}
}

// LoadProvider loads one provider through the batched loader
func (l *Loaders) LoadProvider(ctx context.Context, id string) (*entities.ServiceProvider, error) {
	return l.ProviderLoader.Load(ctx, id)()
}
