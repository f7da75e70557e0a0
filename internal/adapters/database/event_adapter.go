package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

const (
	clickEventsTable    = "click_events"
	pageViewsTable      = "page_views"
	categoryClicksTable = "category_clicks"
)

// EventAdapter implements EventRepository on PostgreSQL
type EventAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEventAdapter creates a new analytics event adapter
func NewEventAdapter(client *postgres.Client) repositories.EventRepository {
	return &EventAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// RecordClick stores a click event
func (a *EventAdapter) RecordClick(ctx context.Context, click *entities.ClickEvent) error {
	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	return a.insert(ctx, clickEventsTable, goqu.Record{
		"id":          click.ID,
		"provider_id": click.ProviderID,
		"kind":        string(click.Kind),
		"occurred_at": nullTime(click.Timestamp),
	})
}

// RecordPageView stores a page view
func (a *EventAdapter) RecordPageView(ctx context.Context, view *entities.PageView) error {
	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	return a.insert(ctx, pageViewsTable, goqu.Record{
		"id":          view.ID,
		"occurred_at": nullTime(view.Timestamp),
	})
}

// RecordCategoryClick stores a category click
func (a *EventAdapter) RecordCategoryClick(ctx context.Context, click *entities.CategoryClick) error {
	if click.ID == "" {
		click.ID = uuid.NewString()
	}
	return a.insert(ctx, categoryClicksTable, goqu.Record{
		"id":          click.ID,
		"category":    click.Category,
		"occurred_at": nullTime(click.Timestamp),
	})
}

func (a *EventAdapter) insert(ctx context.Context, table string, record goqu.Record) error {
	query, args, err := a.db.Insert(table).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to record "+table, err)
	}
	return nil
}

// ListClicks returns every click event, oldest first
func (a *EventAdapter) ListClicks(ctx context.Context) ([]*entities.ClickEvent, error) {
	rows, err := a.query(ctx, a.db.Select("id", "provider_id", "kind", "occurred_at").From(clickEventsTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*entities.ClickEvent, 0)
	for rows.Next() {
		click := &entities.ClickEvent{}
		var kind string
		var occurredAt sql.NullTime
		if err := rows.Scan(&click.ID, &click.ProviderID, &kind, &occurredAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan click event", err)
		}
		click.Kind = entities.ClickKind(kind)
		click.Timestamp = timestampOf(occurredAt)
		result = append(result, click)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate click events", err)
	}
	return result, nil
}

// ListPageViews returns every page view, oldest first
func (a *EventAdapter) ListPageViews(ctx context.Context) ([]*entities.PageView, error) {
	rows, err := a.query(ctx, a.db.Select("id", "occurred_at").From(pageViewsTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*entities.PageView, 0)
	for rows.Next() {
		view := &entities.PageView{}
		var occurredAt sql.NullTime
		if err := rows.Scan(&view.ID, &occurredAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan page view", err)
		}
		view.Timestamp = timestampOf(occurredAt)
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate page views", err)
	}
	return result, nil
}

// ListCategoryClicks returns every category click, oldest first
func (a *EventAdapter) ListCategoryClicks(ctx context.Context) ([]*entities.CategoryClick, error) {
	rows, err := a.query(ctx, a.db.Select("id", "category", "occurred_at").From(categoryClicksTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*entities.CategoryClick, 0)
	for rows.Next() {
		click := &entities.CategoryClick{}
		var occurredAt sql.NullTime
		if err := rows.Scan(&click.ID, &click.Category, &occurredAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan category click", err)
		}
		click.Timestamp = timestampOf(occurredAt)
		result = append(result, click)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate category clicks", err)
	}
	return result, nil
}

func (a *EventAdapter) query(ctx context.Context, ds *goqu.SelectDataset) (*sql.Rows, error) {
	query, args, err := ds.Order(goqu.I("occurred_at").Asc().NullsFirst(), goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list events", err)
	}
	return rows, nil
}

func nullTime(ts entities.Timestamp) sql.NullTime {
	if ts.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: ts.UTC(), Valid: true}
}

func timestampOf(t sql.NullTime) entities.Timestamp {
	if !t.Valid {
		return entities.Timestamp{}
	}
	return entities.At(t.Time)
}
