package handlers

import (
	"net/http"

	"github.com/zatekoja/akutvagt/backend/internal/application/services"
	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
)

// NotificationHandler exposes the in-app notification center
type NotificationHandler struct {
	center *services.NotificationCenter
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(center *services.NotificationCenter) *NotificationHandler {
	return &NotificationHandler{center: center}
}

// List handles GET /api/users/{userId}/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	respondWithData(w, http.StatusOK, map[string]interface{}{
		"notifications": h.center.List(userID),
		"unreadCount":   h.center.UnreadCount(userID),
	})
}

// Add handles POST /api/notifications
func (h *NotificationHandler) Add(w http.ResponseWriter, r *http.Request) {
	var n entities.Notification
	if err := decodeJSON(w, r, &n); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	added, err := h.center.Add(n)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusCreated, added)
}

// MarkRead handles POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.center.MarkRead(id); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]string{"id": id})
}

// MarkAllRead handles POST /api/users/{userId}/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	changed := h.center.MarkAllRead(r.PathValue("userId"))
	respondWithData(w, http.StatusOK, map[string]int{"updated": changed})
}

// Clear handles DELETE /api/notifications/{id}
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.center.Clear(id); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]string{"id": id})
}
