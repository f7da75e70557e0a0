//go:build integration

package kvstore

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	redisclient "github.com/zatekoja/akutvagt/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/akutvagt/backend/pkg/config"
)

func startRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := redisclient.NewClient(ctx, &config.RedisConfig{Host: host, Port: port.Int()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStore_ListPrefixAcrossScanPages(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(startRedis(t))

	const n = scanBatch*2 + 17
	for i := 0; i < n; i++ {
		require.NoError(t, store.Set(ctx, ClickPrefix+strconv.Itoa(i), []byte(fmt.Sprintf(`{"id":"%d"}`, i))))
	}
	require.NoError(t, store.Set(ctx, ProviderPrefix+"x", []byte(`{}`)))

	values, err := store.ListPrefix(ctx, ClickPrefix)
	require.NoError(t, err)
	assert.Len(t, values, n)

	count, err := store.CountPrefix(ctx, ProviderPrefix)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRedisStore_ProviderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProviderAdapter(NewRedisStore(startRedis(t)))

	p := &entities.ServiceProvider{CompanyName: "Akut VVS", Address: "Hovedgaden 1", Phone: "1", Category: entities.CategoryPlumber}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Akut VVS", got.CompanyName)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.Error(t, err)
}
