package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zatekoja/akutvagt/backend/internal/api/loaders"
	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/providers"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
)

const defaultHeartbeat = 30 * time.Second

// SSEHandler streams recorded analytics events to admin dashboards
type SSEHandler struct {
	eventBus  providers.EventBus
	providers repositories.ProviderRepository
	heartbeat time.Duration
	clients   map[string]map[chan *entities.AnalyticsEvent]bool // channel -> clients
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler. providerRepo is used to fill in
// company names on click events that arrive without one; it may be nil.
func NewSSEHandler(eventBus providers.EventBus, providerRepo repositories.ProviderRepository) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		providers: providerRepo,
		heartbeat: defaultHeartbeat,
		clients:   make(map[string]map[chan *entities.AnalyticsEvent]bool),
	}
}

// StreamAnalytics handles GET /api/stats/stream
func (h *SSEHandler) StreamAnalytics(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.EventChannelAnalytics, map[string]interface{}{
		"timestamp": time.Now(),
	})
}

// StreamProviderAnalytics handles GET /api/stats/stream/providers/{id}
func (h *SSEHandler) StreamProviderAnalytics(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")
	if providerID == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}
	h.stream(w, r, providers.GetProviderChannel(providerID), map[string]interface{}{
		"providerId": providerID,
		"timestamp":  time.Now(),
	})
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, channel string, hello map[string]interface{}) {
	logger := observability.LoggerFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("Failed to subscribe to channel")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan *entities.AnalyticsEvent, 10)
	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	h.sendEvent(w, "connected", hello)
	flusher.Flush()

	go h.forwardEvents(r.Context(), eventChan, clientChan)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Str("channel", channel).Msg("Client disconnected from analytics stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.Type), event)
			flusher.Flush()
		}
	}
}

// enrichBatch bounds how many queued events share one provider lookup
const enrichBatch = 32

// forwardEvents moves events from the bus to the client. Queued events are
// drained in batches and click events without a company name are filled in
// through a loader built for that batch, so renamed providers show up on the
// next batch.
func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.AnalyticsEvent, clientChan chan<- *entities.AnalyticsEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			batch, open := drain(eventChan, event)
			for _, e := range h.enrich(ctx, batch) {
				select {
				case clientChan <- e:
				default:
					// Client channel full, skip event
				}
			}
			if !open {
				return
			}
		}
	}
}

// drain collects first plus whatever is already queued, up to enrichBatch.
// It reports false once eventChan is closed.
func drain(eventChan <-chan *entities.AnalyticsEvent, first *entities.AnalyticsEvent) ([]*entities.AnalyticsEvent, bool) {
	batch := []*entities.AnalyticsEvent{first}
	for len(batch) < enrichBatch {
		select {
		case e, ok := <-eventChan:
			if !ok {
				return batch, false
			}
			batch = append(batch, e)
		default:
			return batch, true
		}
	}
	return batch, true
}

func (h *SSEHandler) enrich(ctx context.Context, batch []*entities.AnalyticsEvent) []*entities.AnalyticsEvent {
	if h.providers == nil {
		return batch
	}

	loader := loaders.NewLoaders(h.providers)
	thunks := make(map[int]func() (*entities.ServiceProvider, error))
	for i, event := range batch {
		if event != nil && event.ProviderID != "" && event.CompanyName == "" {
			thunks[i] = loader.ProviderLoader.Load(ctx, event.ProviderID)
		}
	}

	for i, thunk := range thunks {
		p, err := thunk()
		if err != nil {
			continue
		}
		enriched := *batch[i]
		enriched.CompanyName = p.CompanyName
		batch[i] = &enriched
	}
	return batch
}

// registerClient registers a client for a channel
func (h *SSEHandler) registerClient(channel string, clientChan chan *entities.AnalyticsEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan *entities.AnalyticsEvent]bool)
	}
	h.clients[channel][clientChan] = true
	observability.GetLogger().Debug().
		Str("channel", channel).
		Int("total", len(h.clients[channel])).
		Msg("Client registered")
}

// unregisterClient unregisters a client from a channel
func (h *SSEHandler) unregisterClient(channel string, clientChan chan *entities.AnalyticsEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[channel]; exists {
		delete(clients, clientChan)
		if len(clients) == 0 {
			delete(h.clients, channel)
		}
	}
}

// sendEvent sends an SSE event to the client
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Error().Err(err).Msg("Failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected clients
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}
