package loaders

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/akutvagt/backend/internal/adapters/kvstore"
	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

type countingRepo struct {
	repositories.ProviderRepository
	mu      sync.Mutex
	batches [][]string
}

func (c *countingRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.ServiceProvider, error) {
	c.mu.Lock()
	c.batches = append(c.batches, append([]string(nil), ids...))
	c.mu.Unlock()
	return c.ProviderRepository.GetByIDs(ctx, ids)
}

func seededRepo(t *testing.T) (*countingRepo, []string) {
	t.Helper()
	repo := kvstore.NewProviderAdapter(kvstore.NewMemoryStore())
	var ids []string
	for _, name := range []string{"Akut VVS", "Elektrikeren 24/7"} {
		p := &entities.ServiceProvider{CompanyName: name, Address: "x", Phone: "1", Category: entities.CategoryPlumber}
		require.NoError(t, repo.Create(context.Background(), p))
		ids = append(ids, p.ID)
	}
	return &countingRepo{ProviderRepository: repo}, ids
}

func TestProviderLoader_BatchesConcurrentLoads(t *testing.T) {
	repo, ids := seededRepo(t)
	l := NewLoaders(repo)
	ctx := context.Background()

	first := l.ProviderLoader.Load(ctx, ids[0])
	second := l.ProviderLoader.Load(ctx, ids[1])
	missing := l.ProviderLoader.Load(ctx, "ghost")

	p1, err := first()
	require.NoError(t, err)
	assert.Equal(t, "Akut VVS", p1.CompanyName)

	p2, err := second()
	require.NoError(t, err)
	assert.Equal(t, "Elektrikeren 24/7", p2.CompanyName)

	_, err = missing()
	assert.True(t, apperrors.IsNotFound(err))

	assert.Len(t, repo.batches, 1)
	assert.ElementsMatch(t, []string{ids[0], ids[1], "ghost"}, repo.batches[0])
}

func TestProviderLoader_CachesWithinLoaders(t *testing.T) {
	repo, ids := seededRepo(t)
	l := NewLoaders(repo)
	ctx := context.Background()

	_, err := l.LoadProvider(ctx, ids[0])
	require.NoError(t, err)
	_, err = l.LoadProvider(ctx, ids[0])
	require.NoError(t, err)

	assert.Len(t, repo.batches, 1)
}

func TestProviderLoader_FreshLoadersSeeUpdates(t *testing.T) {
	repo, ids := seededRepo(t)
	ctx := context.Background()

	p, err := NewLoaders(repo).LoadProvider(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Akut VVS", p.CompanyName)

	renamed := "Akut VVS & Kloak"
	_, err = repo.Update(ctx, ids[0], entities.ProviderPatch{CompanyName: &renamed})
	require.NoError(t, err)

	p, err = NewLoaders(repo).LoadProvider(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, renamed, p.CompanyName)
}
