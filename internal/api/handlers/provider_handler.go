package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/akutvagt/backend/internal/application/services"
	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

// ProviderHandler handles service provider HTTP requests
type ProviderHandler struct {
	service *services.ProviderService
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(service *services.ProviderService) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// ListProviders handles GET /api/providers?category=&lat=&lon=&locationError=&address=
func (h *ProviderHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := services.LocationRequest{
		DeviceError: strings.TrimSpace(query.Get("locationError")),
		Address:     strings.TrimSpace(query.Get("address")),
	}
	lat, latErr := parseOptionalFloat(query.Get("lat"))
	lon, lonErr := parseOptionalFloat(query.Get("lon"))
	if latErr != nil || lonErr != nil {
		respondWithError(w, http.StatusBadRequest, "invalid lat or lon parameter")
		return
	}
	req.Lat, req.Lon = lat, lon

	result, err := h.service.Search(r.Context(), services.ProviderQuery{
		Category: query.Get("category"),
		Location: req,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, result)
}

// GetProvider handles GET /api/providers/{id}
func (h *ProviderHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	provider, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, provider)
}

// CreateProvider handles POST /api/providers
func (h *ProviderHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var provider entities.ServiceProvider
	if err := decodeJSON(w, r, &provider); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), &provider)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusCreated, created)
}

// UpdateProvider handles PUT /api/providers/{id}
func (h *ProviderHandler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch entities.ProviderPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, updated)
}

// DeleteProvider handles DELETE /api/providers/{id}
func (h *ProviderHandler) DeleteProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]string{"id": id})
}

// Initialize handles POST /api/init
func (h *ProviderHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Initialize(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"message": "Database initialized with sample data",
		"count":   count,
	})
}

func parseOptionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid number " + strconv.Quote(raw))
	}
	return &v, nil
}
