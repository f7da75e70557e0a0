package repositories

import (
	"context"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
)

// ProviderRepository defines the interface for service provider data operations
type ProviderRepository interface {
	// List returns every provider in insertion order
	List(ctx context.Context) ([]*entities.ServiceProvider, error)

	// GetByID retrieves a provider; a NOT_FOUND AppError when absent
	GetByID(ctx context.Context, id string) (*entities.ServiceProvider, error)

	// GetByIDs retrieves several providers; missing ids are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*entities.ServiceProvider, error)

	// Create stores a new provider, assigning ID and timestamps when empty
	Create(ctx context.Context, provider *entities.ServiceProvider) error

	// Update applies a partial update and returns the stored result
	Update(ctx context.Context, id string, patch entities.ProviderPatch) (*entities.ServiceProvider, error)

	// Delete removes a provider
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored providers
	Count(ctx context.Context) (int, error)
}
