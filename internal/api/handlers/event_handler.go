package handlers

import (
	"net/http"

	"github.com/zatekoja/akutvagt/backend/internal/application/services"
	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
)

// EventHandler records visitor interactions
type EventHandler struct {
	analytics *services.AnalyticsService
}

// NewEventHandler creates a new event handler
func NewEventHandler(analytics *services.AnalyticsService) *EventHandler {
	return &EventHandler{analytics: analytics}
}

// clickRequest accepts both the current field names and the ones the
// original front-end sends
type clickRequest struct {
	ProviderID  string             `json:"providerId"`
	CraftsmanID string             `json:"craftsmanId"`
	Kind        entities.ClickKind `json:"kind"`
	Type        entities.ClickKind `json:"type"`
}

func (c clickRequest) providerID() string {
	if c.ProviderID != "" {
		return c.ProviderID
	}
	return c.CraftsmanID
}

func (c clickRequest) kind() entities.ClickKind {
	if c.Kind != "" {
		return c.Kind
	}
	return c.Type
}

// RecordClick handles POST /api/clicks
func (h *EventHandler) RecordClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	click, err := h.analytics.RecordClick(r.Context(), req.providerID(), req.kind())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusCreated, click)
}

// ListClicks handles GET /api/clicks
func (h *EventHandler) ListClicks(w http.ResponseWriter, r *http.Request) {
	clicks, err := h.analytics.ListClicks(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if clicks == nil {
		clicks = []*entities.ClickEvent{}
	}

	respondWithData(w, http.StatusOK, clicks)
}

// RecordPageView handles POST /api/page-views
func (h *EventHandler) RecordPageView(w http.ResponseWriter, r *http.Request) {
	view, err := h.analytics.RecordPageView(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusCreated, view)
}

// RecordCategoryClick handles POST /api/category-clicks
func (h *EventHandler) RecordCategoryClick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	click, err := h.analytics.RecordCategoryClick(r.Context(), req.Category)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusCreated, click)
}
