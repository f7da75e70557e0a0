package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

// NotificationCenter keeps in-app notifications in memory, newest first.
// It is owned by the application shell and safe for concurrent use.
type NotificationCenter struct {
	mu    sync.RWMutex
	items []*entities.Notification
	now   func() time.Time
}

// NewNotificationCenter creates an empty notification center
func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{now: time.Now}
}

// Add stores n with a fresh ID and creation time, unread
func (c *NotificationCenter) Add(n entities.Notification) (*entities.Notification, error) {
	n.UserID = strings.TrimSpace(n.UserID)
	n.Title = strings.TrimSpace(n.Title)
	if n.UserID == "" || n.Title == "" {
		return nil, apperrors.NewValidationError("missing required fields: userId, title")
	}
	if !n.Type.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown notification type %q", n.Type))
	}

	n.ID = uuid.NewString()
	n.CreatedAt = c.now().UTC()
	n.IsRead = false
	stored := &n

	c.mu.Lock()
	c.items = slices.Insert(c.items, 0, stored)
	c.mu.Unlock()

	out := *stored
	return &out, nil
}

// MarkRead marks one notification as read
func (c *NotificationCenter) MarkRead(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.items {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("notification with id %s not found", id))
}

// MarkAllRead marks every notification of userID as read and returns how
// many changed
func (c *NotificationCenter) MarkAllRead(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := 0
	for _, n := range c.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed
}

// Clear removes one notification
func (c *NotificationCenter) Clear(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.items, func(n *entities.Notification) bool { return n.ID == id })
	if i < 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("notification with id %s not found", id))
	}
	c.items = slices.Delete(c.items, i, i+1)
	return nil
}

// List returns copies of userID's notifications, newest first
func (c *NotificationCenter) List(userID string) []entities.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]entities.Notification, 0)
	for _, n := range c.items {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out
}

// UnreadCount returns how many of userID's notifications are unread
func (c *NotificationCenter) UnreadCount(userID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, n := range c.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count
}
