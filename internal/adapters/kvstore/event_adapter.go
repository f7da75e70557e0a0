package kvstore

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

// EventAdapter implements EventRepository on a key-value Store
type EventAdapter struct {
	store Store
}

// NewEventAdapter creates an event repository backed by store
func NewEventAdapter(store Store) repositories.EventRepository {
	return &EventAdapter{store: store}
}

// RecordClick stores a click event under click:<id>
func (a *EventAdapter) RecordClick(ctx context.Context, click *entities.ClickEvent) error {
	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	return a.put(ctx, ClickPrefix+click.ID, click)
}

// RecordPageView stores a page view under pageview:<id>
func (a *EventAdapter) RecordPageView(ctx context.Context, view *entities.PageView) error {
	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	return a.put(ctx, PageViewPrefix+view.ID, view)
}

// RecordCategoryClick stores a category click under categoryclick:<id>
func (a *EventAdapter) RecordCategoryClick(ctx context.Context, click *entities.CategoryClick) error {
	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	return a.put(ctx, CategoryClickPrefix+click.ID, click)
}

func (a *EventAdapter) put(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewInternalError("failed to encode event", err)
	}
	if err := a.store.Set(ctx, key, data); err != nil {
		return apperrors.NewInternalError("failed to store event", err)
	}
	return nil
}

// ListClicks returns every stored click
func (a *EventAdapter) ListClicks(ctx context.Context) ([]*entities.ClickEvent, error) {
	return listDecoded[entities.ClickEvent](ctx, a.store, ClickPrefix)
}

// ListPageViews returns every stored page view
func (a *EventAdapter) ListPageViews(ctx context.Context) ([]*entities.PageView, error) {
	return listDecoded[entities.PageView](ctx, a.store, PageViewPrefix)
}

// ListCategoryClicks returns every stored category click
func (a *EventAdapter) ListCategoryClicks(ctx context.Context) ([]*entities.CategoryClick, error) {
	return listDecoded[entities.CategoryClick](ctx, a.store, CategoryClickPrefix)
}

// listDecoded loads every record under prefix. Undecodable records are
// skipped so one bad write cannot hide the rest of the log.
func listDecoded[T any](ctx context.Context, store Store, prefix string) ([]*T, error) {
	values, err := store.ListPrefix(ctx, prefix)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list "+prefix+" events", err)
	}

	result := make([]*T, 0, len(values))
	for _, value := range values {
		var event T
		if err := json.Unmarshal(value, &event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("prefix", prefix).Msg("Skipping undecodable event record")
			continue
		}
		result = append(result, &event)
	}
	return result, nil
}
