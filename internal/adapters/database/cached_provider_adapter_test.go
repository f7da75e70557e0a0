package database

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type mockProviderRepo struct {
	mock.Mock
	repositories.ProviderRepository
}

func (m *mockProviderRepo) List(ctx context.Context) ([]*entities.ServiceProvider, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*entities.ServiceProvider)
	return list, args.Error(1)
}

func (m *mockProviderRepo) Create(ctx context.Context, p *entities.ServiceProvider) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProviderRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var errMiss = errors.New("miss")

func TestCachedProviderAdapter_ListMissFillsCache(t *testing.T) {
	cache := new(mockCache)
	repo := new(mockProviderRepo)
	list := []*entities.ServiceProvider{{ID: "a", CompanyName: "A"}}

	cache.On("Get", mock.Anything, providersListCacheKey).Return(nil, errMiss)
	repo.On("List", mock.Anything).Return(list, nil)
	cache.On("Set", mock.Anything, providersListCacheKey, mock.Anything, providersListTTL).Return(nil)

	got, err := NewCachedProviderAdapter(repo, cache).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, list, got)
	cache.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestCachedProviderAdapter_ListHitSkipsStore(t *testing.T) {
	cache := new(mockCache)
	repo := new(mockProviderRepo)
	data, _ := json.Marshal([]*entities.ServiceProvider{{ID: "a"}, {ID: "b"}})
	cache.On("Get", mock.Anything, providersListCacheKey).Return(data, nil)

	adapter := NewCachedProviderAdapter(repo, cache)
	got, err := adapter.GetByIDs(context.Background(), []string{"b", "zz"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestCachedProviderAdapter_WritesInvalidate(t *testing.T) {
	cache := new(mockCache)
	repo := new(mockProviderRepo)
	p := &entities.ServiceProvider{ID: "a"}

	repo.On("Create", mock.Anything, p).Return(nil)
	repo.On("Delete", mock.Anything, "a").Return(nil)
	cache.On("Delete", mock.Anything, []string{providersListCacheKey}).Return(nil).Once()
	cache.On("Delete", mock.Anything, []string{"provider:a", providersListCacheKey}).Return(errors.New("redis down")).Once()

	adapter := NewCachedProviderAdapter(repo, cache)
	require.NoError(t, adapter.Create(context.Background(), p))
	require.NoError(t, adapter.Delete(context.Background(), "a"), "cache failures must not fail the write")
	cache.AssertExpectations(t)
}
