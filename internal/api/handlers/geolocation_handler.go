package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/zatekoja/akutvagt/backend/internal/application/services"
	"github.com/zatekoja/akutvagt/backend/internal/domain/providers"
	"github.com/zatekoja/akutvagt/backend/pkg/debounce"
)

// GeolocationHandler handles location acquisition and address lookup endpoints.
type GeolocationHandler struct {
	location *services.LocationService
}

// NewGeolocationHandler creates a new geolocation handler.
func NewGeolocationHandler(location *services.LocationService) *GeolocationHandler {
	return &GeolocationHandler{location: location}
}

// Suggest handles GET /api/location/suggest?q=...&session=...
func (h *GeolocationHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	suggestions, err := h.location.Suggest(r.Context(), query.Get("session"), query.Get("q"))
	if errors.Is(err, debounce.ErrSuperseded) {
		// a newer keystroke from the same session owns the answer
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []providers.AddressSuggestion{}
	}

	respondWithData(w, http.StatusOK, suggestions)
}

// Resolve handles GET /api/location/resolve?ref=...
func (h *GeolocationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if ref == "" {
		respondWithError(w, http.StatusBadRequest, "ref parameter is required")
		return
	}

	resolved, err := h.location.Resolve(r.Context(), ref)
	if errors.Is(err, providers.ErrLocationUnresolved) {
		respondWithError(w, http.StatusNotFound, "address has no coordinates")
		return
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, resolved)
}

// Acquire handles POST /api/location
func (h *GeolocationHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	var req services.LocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, h.location.Acquire(r.Context(), req))
}
