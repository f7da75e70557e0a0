package routes

import (
	"net/http"

	"github.com/zatekoja/akutvagt/backend/internal/api/handlers"
	"github.com/zatekoja/akutvagt/backend/internal/api/middleware"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
)

// Handlers groups the route handlers. SSE and Cache may be nil.
type Handlers struct {
	Provider     *handlers.ProviderHandler
	Event        *handlers.EventHandler
	Stats        *handlers.StatsHandler
	Geolocation  *handlers.GeolocationHandler
	Notification *handlers.NotificationHandler
	SSE          *handlers.SSEHandler
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	handlers        Handlers
	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(h Handlers, cacheMiddleware *middleware.CacheMiddleware, allowedOrigins []string, metrics *observability.Metrics) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		handlers:        h,
		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	h := r.handlers

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Provider endpoints
	r.mux.HandleFunc("GET /api/providers", h.Provider.ListProviders)
	r.mux.HandleFunc("GET /api/providers/{id}", h.Provider.GetProvider)
	r.mux.HandleFunc("POST /api/providers", h.Provider.CreateProvider)
	r.mux.HandleFunc("PUT /api/providers/{id}", h.Provider.UpdateProvider)
	r.mux.HandleFunc("DELETE /api/providers/{id}", h.Provider.DeleteProvider)
	r.mux.HandleFunc("POST /api/init", h.Provider.Initialize)

	// Event endpoints
	r.mux.HandleFunc("POST /api/clicks", h.Event.RecordClick)
	r.mux.HandleFunc("GET /api/clicks", h.Event.ListClicks)
	r.mux.HandleFunc("POST /api/page-views", h.Event.RecordPageView)
	r.mux.HandleFunc("POST /api/category-clicks", h.Event.RecordCategoryClick)

	// Statistics endpoints
	r.mux.HandleFunc("GET /api/stats/providers", h.Stats.ProviderStats)
	r.mux.HandleFunc("GET /api/stats/providers/{id}", h.Stats.ProviderStatsByID)
	r.mux.HandleFunc("GET /api/stats/categories", h.Stats.CategoryStats)
	r.mux.HandleFunc("GET /api/stats/page-views", h.Stats.PageViews)
	r.mux.HandleFunc("GET /api/stats/export.csv", h.Stats.ExportCSV)
	if h.SSE != nil {
		r.mux.HandleFunc("GET /api/stats/stream", h.SSE.StreamAnalytics)
		r.mux.HandleFunc("GET /api/stats/stream/providers/{id}", h.SSE.StreamProviderAnalytics)
	}

	// Location endpoints
	r.mux.HandleFunc("GET /api/location/suggest", h.Geolocation.Suggest)
	r.mux.HandleFunc("GET /api/location/resolve", h.Geolocation.Resolve)
	r.mux.HandleFunc("POST /api/location", h.Geolocation.Acquire)

	// Notification endpoints
	r.mux.HandleFunc("GET /api/users/{userId}/notifications", h.Notification.List)
	r.mux.HandleFunc("POST /api/users/{userId}/notifications/read-all", h.Notification.MarkAllRead)
	r.mux.HandleFunc("POST /api/notifications", h.Notification.Add)
	r.mux.HandleFunc("POST /api/notifications/{id}/read", h.Notification.MarkRead)
	r.mux.HandleFunc("DELETE /api/notifications/{id}", h.Notification.Clear)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
