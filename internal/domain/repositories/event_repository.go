package repositories

import (
	"context"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
)

// EventRepository stores visitor interaction events. Events are append-only.
type EventRepository interface {
	RecordClick(ctx context.Context, click *entities.ClickEvent) error
	RecordPageView(ctx context.Context, view *entities.PageView) error
	RecordCategoryClick(ctx context.Context, click *entities.CategoryClick) error

	ListClicks(ctx context.Context) ([]*entities.ClickEvent, error)
	ListPageViews(ctx context.Context) ([]*entities.PageView, error)
	ListCategoryClicks(ctx context.Context) ([]*entities.CategoryClick, error)
}
