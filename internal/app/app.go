// Package app wires configuration, storage backends and services together for
// the binaries under cmd/.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"github.com/zatekoja/akutvagt/backend/internal/adapters/cache"
	"github.com/zatekoja/akutvagt/backend/internal/adapters/database"
	"github.com/zatekoja/akutvagt/backend/internal/adapters/events"
	"github.com/zatekoja/akutvagt/backend/internal/adapters/kvstore"
	"github.com/zatekoja/akutvagt/backend/internal/adapters/providers/geolocation"
	"github.com/zatekoja/akutvagt/backend/internal/application/services"
	"github.com/zatekoja/akutvagt/backend/internal/domain/providers"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
	"github.com/zatekoja/akutvagt/backend/pkg/config"
)

// Container holds the wired repositories and services.
type Container struct {
	Config *config.Config

	Cache     providers.CacheProvider
	EventBus  providers.EventBus
	Providers repositories.ProviderRepository
	Events    repositories.EventRepository

	ProviderService  *services.ProviderService
	AnalyticsService *services.AnalyticsService
	StatsService     *services.StatsService
	LocationService  *services.LocationService
	Notifications    *services.NotificationCenter

	closers []func() error
}

// New builds a Container for the configured store backend. metrics may be nil.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*Container, error) {
	c := &Container{Config: cfg}

	if err := c.initStores(ctx); err != nil {
		return nil, multierr.Append(err, c.Close())
	}

	var lookup providers.AddressLookupProvider
	if cfg.AddressLookup.BaseURL == "mock" {
		lookup = geolocation.NewMockAddressLookupProvider()
		log.Info().Msg("Using mock address lookup")
	} else {
		lookup = geolocation.NewDawaProvider(cfg.AddressLookup, c.Cache, metrics)
	}

	c.LocationService = services.NewLocationService(lookup, cfg.Location, metrics)
	c.ProviderService = services.NewProviderService(c.Providers, services.NewRankingService(), c.LocationService)
	c.AnalyticsService = services.NewAnalyticsService(c.Providers, c.Events, c.EventBus, metrics)
	c.StatsService = services.NewStatsService(c.Providers, c.Events, cfg.Stats.StatsLocation())
	c.Notifications = services.NewNotificationCenter()

	return c, nil
}

func (c *Container) initStores(ctx context.Context) error {
	cfg := c.Config

	switch cfg.Store.Backend {
	case config.StoreMemory:
		store := kvstore.NewMemoryStore()
		c.Providers = kvstore.NewProviderAdapter(store)
		c.Events = kvstore.NewEventAdapter(store)
		c.Cache = cache.NewMemoryAdapter()
		c.EventBus = events.NewMemoryEventBus()
		c.closers = append(c.closers, c.EventBus.Close)
		log.Info().Msg("Using in-memory store")
		return nil

	case config.StoreRedis:
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		c.closers = append(c.closers, redisClient.Close)
		store := kvstore.NewRedisStore(redisClient)
		c.Providers = kvstore.NewProviderAdapter(store)
		c.Events = kvstore.NewEventAdapter(store)
		c.Cache = cache.NewRedisAdapter(redisClient)
		c.EventBus = events.NewRedisEventBus(redisClient)
		c.closers = append(c.closers, c.EventBus.Close)
		log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Using Redis store")
		return nil

	case config.StorePostgres:
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.closers = append(c.closers, pgClient.Close)
		if err := database.EnsureSchema(ctx, pgClient); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}

		var baseProviders repositories.ProviderRepository = database.NewProviderAdapter(pgClient)
		c.Events = database.NewEventAdapter(pgClient)

		// Redis is optional next to Postgres; without it caching and fan-out stay in process.
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, using in-process cache and event bus")
			c.Cache = cache.NewMemoryAdapter()
			c.EventBus = events.NewMemoryEventBus()
		} else {
			c.closers = append(c.closers, redisClient.Close)
			c.Cache = cache.NewRedisAdapter(redisClient)
			c.EventBus = events.NewRedisEventBus(redisClient)
		}
		c.closers = append(c.closers, c.EventBus.Close)
		c.Providers = database.NewCachedProviderAdapter(baseProviders, c.Cache)
		log.Info().Str("database", cfg.Database.Database).Msg("Using PostgreSQL store")
		return nil

	default:
		return fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// Close releases every client in reverse order of creation.
func (c *Container) Close() error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, c.closers[i]())
	}
	c.closers = nil
	return err
}
