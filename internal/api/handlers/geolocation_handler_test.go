package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/akutvagt/backend/internal/application/services"
	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/providers"
)

func TestGeolocationHandler_Suggest(t *testing.T) {
	app := newTestApp(t)

	w, env := do(t, app.location.Suggest, http.MethodGet, "/api/location/suggest?q=N%C3%B8rregade", nil)
	require.Equal(t, http.StatusOK, w.Code)
	suggestions := decode[[]providers.AddressSuggestion](t, env.Data)
	assert.Len(t, suggestions, 2)

	w, env = do(t, app.location.Suggest, http.MethodGet, "/api/location/suggest?q=N%C3%B8", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestGeolocationHandler_SuggestSupersededCall(t *testing.T) {
	app := newTestApp(t)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i, q := range []string{"Fyns", "Fynsgade"} {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			w := httptest.NewRecorder()
			app.location.Suggest(w, httptest.NewRequest(http.MethodGet, "/api/location/suggest?session=s1&q="+q, nil))
			codes[i] = w.Code
		}(i, q)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusNoContent}, codes)
}

func TestGeolocationHandler_Resolve(t *testing.T) {
	app := newTestApp(t)

	w, env := do(t, app.location.Resolve, http.MethodGet, "/api/location/resolve?ref=mock-odense-fynsgade", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resolved := decode[providers.ResolvedAddress](t, env.Data)
	assert.Equal(t, "Fynsgade 56, 5000 Odense C", resolved.Text)

	w, _ = do(t, app.location.Resolve, http.MethodGet, "/api/location/resolve?ref=nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, app.location.Resolve, http.MethodGet, "/api/location/resolve", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeolocationHandler_Acquire(t *testing.T) {
	app := newTestApp(t)

	w, env := do(t, app.location.Acquire, http.MethodPost, "/api/location", map[string]interface{}{
		"deviceError": "timeout",
		"address":     "Roskildevej",
	})
	require.Equal(t, http.StatusOK, w.Code)
	acq := decode[services.Acquisition](t, env.Data)
	assert.True(t, acq.Known)
	assert.Equal(t, entities.LocationSourceAddress, acq.Source)

	w, env = do(t, app.location.Acquire, http.MethodPost, "/api/location", map[string]interface{}{
		"deviceError": "denied",
		"address":     "Ukendt vej 999",
	})
	require.Equal(t, http.StatusOK, w.Code)
	acq = decode[services.Acquisition](t, env.Data)
	assert.False(t, acq.Known)
	assert.Equal(t, entities.LocationSourceUnknown, acq.Source)
	assert.NotEmpty(t, acq.Messages)
}
