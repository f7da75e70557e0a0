package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/akutvagt/backend/internal/adapters/events"
	"github.com/zatekoja/akutvagt/backend/internal/adapters/kvstore"
	"github.com/zatekoja/akutvagt/backend/internal/adapters/providers/geolocation"
	"github.com/zatekoja/akutvagt/backend/internal/api/handlers"
	"github.com/zatekoja/akutvagt/backend/internal/application/services"
	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/pkg/config"
)

type testApp struct {
	providers    repositories.ProviderRepository
	events       repositories.EventRepository
	provider     *handlers.ProviderHandler
	event        *handlers.EventHandler
	stats        *handlers.StatsHandler
	location     *handlers.GeolocationHandler
	notification *handlers.NotificationHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := kvstore.NewMemoryStore()
	providerRepo := kvstore.NewProviderAdapter(store)
	eventRepo := kvstore.NewEventAdapter(store)
	bus := events.NewMemoryEventBus()
	t.Cleanup(func() { bus.Close() })

	location := services.NewLocationService(geolocation.NewMockAddressLookupProvider(), config.LocationConfig{
		SensorTimeout:    time.Second,
		GeocodeTimeout:   time.Second,
		DebounceInterval: 50 * time.Millisecond,
		MinQueryLength:   3,
	}, nil)

	return &testApp{
		providers:    providerRepo,
		events:       eventRepo,
		provider:     handlers.NewProviderHandler(services.NewProviderService(providerRepo, services.NewRankingService(), location)),
		event:        handlers.NewEventHandler(services.NewAnalyticsService(providerRepo, eventRepo, bus, nil)),
		stats:        handlers.NewStatsHandler(services.NewStatsService(providerRepo, eventRepo, time.UTC)),
		location:     handlers.NewGeolocationHandler(location),
		notification: handlers.NewNotificationHandler(services.NewNotificationCenter()),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, h http.HandlerFunc, method, target string, body interface{}, pathValues ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	w := httptest.NewRecorder()
	h(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func seed(t *testing.T, app *testApp) []*entities.ServiceProvider {
	t.Helper()
	w, _ := do(t, app.provider.Initialize, http.MethodPost, "/api/init", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, err := app.providers.List(context.Background())
	require.NoError(t, err)
	return list
}

func TestProviderHandler_InitThenConflict(t *testing.T) {
	app := newTestApp(t)

	w, env := do(t, app.provider.Initialize, http.MethodPost, "/api/init", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, float64(6), decode[map[string]interface{}](t, env.Data)["count"])

	w, env = do(t, app.provider.Initialize, http.MethodPost, "/api/init", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "database already initialized", env.Error)
}

func TestProviderHandler_ListRanksByQueryLocation(t *testing.T) {
	app := newTestApp(t)
	seed(t, app)

	w, env := do(t, app.provider.ListProviders, http.MethodGet, "/api/providers?category=Alle&lat=56.1629&lon=10.2039", nil)
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[services.ProviderSearchResult](t, env.Data)
	require.Len(t, result.Providers, 6)
	assert.True(t, result.Location.Known)
	assert.Equal(t, "Elektrikeren 24/7", result.Providers[0].CompanyName)
	assert.Equal(t, "Akut Låsesmed Service", result.Providers[1].CompanyName)
	assert.Equal(t, "Nødblik & Vindue", result.Providers[5].CompanyName)
}

func TestProviderHandler_ListFallsBackToAddress(t *testing.T) {
	app := newTestApp(t)
	seed(t, app)

	w, env := do(t, app.provider.ListProviders, http.MethodGet, "/api/providers?category=VVS&locationError=denied&address=Fynsgade", nil)
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[services.ProviderSearchResult](t, env.Data)
	assert.Equal(t, entities.LocationSourceAddress, result.Location.Source)
	require.Len(t, result.Providers, 2)
	assert.Equal(t, "Varme Nu ApS", result.Providers[0].CompanyName)
	require.NotNil(t, result.Providers[0].DistanceKm)
	assert.Less(t, *result.Providers[0].DistanceKm, 2.0)
}

func TestProviderHandler_ListRejectsBadCoordinates(t *testing.T) {
	app := newTestApp(t)
	w, env := do(t, app.provider.ListProviders, http.MethodGet, "/api/providers?lat=north", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestProviderHandler_CRUD(t *testing.T) {
	app := newTestApp(t)

	w, env := do(t, app.provider.CreateProvider, http.MethodPost, "/api/providers", map[string]interface{}{
		"companyName": "Glas-Jensen",
		"address":     "Algade 1, 4000 Roskilde",
		"phone":       "+45 11 11 11 11",
		"category":    "Glarmester",
		"hourlyRate":  650,
		"lat":         55.6415,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[entities.ServiceProvider](t, env.Data)
	assert.NotEmpty(t, created.ID)
	assert.Nil(t, created.Lat, "a lone latitude is dropped")

	w, env = do(t, app.provider.GetProvider, http.MethodGet, "/api/providers/"+created.ID, nil, "id", created.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Glas-Jensen", decode[entities.ServiceProvider](t, env.Data).CompanyName)

	w, env = do(t, app.provider.UpdateProvider, http.MethodPut, "/api/providers/"+created.ID, map[string]interface{}{
		"website": "https://glas-jensen.dk",
	}, "id", created.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://glas-jensen.dk", decode[entities.ServiceProvider](t, env.Data).Website)

	w, env = do(t, app.provider.UpdateProvider, http.MethodPut, "/api/providers/"+created.ID, map[string]interface{}{
		"website": nil,
	}, "id", created.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[entities.ServiceProvider](t, env.Data).Website)

	w, _ = do(t, app.provider.DeleteProvider, http.MethodDelete, "/api/providers/"+created.ID, nil, "id", created.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, app.provider.GetProvider, http.MethodGet, "/api/providers/"+created.ID, nil, "id", created.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestProviderHandler_CreateValidation(t *testing.T) {
	app := newTestApp(t)

	w, env := do(t, app.provider.CreateProvider, http.MethodPost, "/api/providers", map[string]interface{}{
		"companyName": "Uden Telefon",
		"address":     "Vej 1",
		"category":    "VVS",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "phone")

	req := httptest.NewRequest(http.MethodPost, "/api/providers", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	app.provider.CreateProvider(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProviderHandler_UpdateUnknown(t *testing.T) {
	app := newTestApp(t)
	w, _ := do(t, app.provider.UpdateProvider, http.MethodPut, "/api/providers/ghost", map[string]interface{}{"phone": "1"}, "id", "ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, app.provider.DeleteProvider, http.MethodDelete, "/api/providers/ghost", nil, "id", "ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
