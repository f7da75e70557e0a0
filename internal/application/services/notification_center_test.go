package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

func note(user, title string) entities.Notification {
	return entities.Notification{UserID: user, Type: entities.NotificationDrivePosted, Title: title, Message: title}
}

func TestNotificationCenter_AddListsNewestFirst(t *testing.T) {
	c := NewNotificationCenter()
	base := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	calls := 0
	c.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}

	first, err := c.Add(note("u1", "first"))
	require.NoError(t, err)
	_, err = c.Add(note("u2", "other user"))
	require.NoError(t, err)
	second, err := c.Add(note("u1", "second"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, base.Add(time.Minute), first.CreatedAt)
	assert.False(t, first.IsRead)

	list := c.List("u1")
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
	assert.Equal(t, 2, c.UnreadCount("u1"))
	assert.Empty(t, c.List("nobody"))
}

func TestNotificationCenter_AddValidates(t *testing.T) {
	c := NewNotificationCenter()

	_, err := c.Add(entities.Notification{Type: entities.NotificationSystemUpdate, Title: "x"})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	_, err = c.Add(entities.Notification{UserID: "u1", Type: "carrier_pigeon", Title: "x"})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
}

func TestNotificationCenter_MarkReadAndClear(t *testing.T) {
	c := NewNotificationCenter()
	a, _ := c.Add(note("u1", "a"))
	b, _ := c.Add(note("u1", "b"))
	_, _ = c.Add(note("u2", "c"))

	require.NoError(t, c.MarkRead(a.ID))
	assert.Equal(t, 1, c.UnreadCount("u1"))
	assert.True(t, apperrors.IsNotFound(c.MarkRead("missing")))

	assert.Equal(t, 1, c.MarkAllRead("u1"))
	assert.Zero(t, c.UnreadCount("u1"))
	assert.Equal(t, 1, c.UnreadCount("u2"))

	require.NoError(t, c.Clear(b.ID))
	assert.Len(t, c.List("u1"), 1)
	assert.True(t, apperrors.IsNotFound(c.Clear(b.ID)))
}

func TestNotificationCenter_ListReturnsCopies(t *testing.T) {
	c := NewNotificationCenter()
	added, _ := c.Add(note("u1", "a"))

	list := c.List("u1")
	list[0].IsRead = true
	added.Title = "changed"

	fresh := c.List("u1")
	assert.False(t, fresh[0].IsRead)
	assert.Equal(t, "a", fresh[0].Title)
}

func TestNotificationCenter_ConcurrentUse(t *testing.T) {
	c := NewNotificationCenter()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := c.Add(note("u1", "hello"))
			if err == nil {
				_ = c.MarkRead(n.ID)
			}
			c.List("u1")
		}()
	}
	wg.Wait()

	assert.Len(t, c.List("u1"), 20)
	assert.Zero(t, c.UnreadCount("u1"))
}
