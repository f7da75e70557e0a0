package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/zatekoja/akutvagt/backend/internal/application/services"
	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
)

// StatsHandler serves the admin statistics
type StatsHandler struct {
	stats *services.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// ProviderStats handles GET /api/stats/providers?window=
func (h *StatsHandler) ProviderStats(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	report, err := h.stats.Compute(r.Context(), window)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, report)
}

// ProviderStatsByID handles GET /api/stats/providers/{id}?window=
func (h *StatsHandler) ProviderStatsByID(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	stats, err := h.stats.ComputeForProvider(r.Context(), r.PathValue("id"), window)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, stats)
}

// CategoryStats handles GET /api/stats/categories?window=
func (h *StatsHandler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	counts, err := h.stats.ComputeCategories(r.Context(), window)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"window":     window,
		"categories": counts,
	})
}

// PageViews handles GET /api/stats/page-views?window=
func (h *StatsHandler) PageViews(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	count, err := h.stats.ComputePageViews(r.Context(), window)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"window":    window,
		"pageViews": count,
	})
}

// ExportCSV handles GET /api/stats/export.csv?window=
func (h *StatsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.stats.ExportCSV(r.Context(), window, &buf); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.stats.ExportFileName()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseWindow reads the window parameter; an absent value means all time
func parseWindow(w http.ResponseWriter, r *http.Request) (entities.TimeWindow, bool) {
	window, err := entities.ParseTimeWindow(r.URL.Query().Get("window"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return window, true
}
