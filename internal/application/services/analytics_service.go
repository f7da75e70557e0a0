package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/providers"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

// AnalyticsService records visitor interactions and publishes them on the
// event bus for the live admin feed
type AnalyticsService struct {
	providers repositories.ProviderRepository
	events    repositories.EventRepository
	bus       providers.EventBus
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewAnalyticsService creates a new analytics service. bus and metrics may be nil.
func NewAnalyticsService(providerRepo repositories.ProviderRepository, events repositories.EventRepository, bus providers.EventBus, metrics *observability.Metrics) *AnalyticsService {
	return &AnalyticsService{
		providers: providerRepo,
		events:    events,
		bus:       bus,
		metrics:   metrics,
		now:       time.Now,
	}
}

// RecordClick stores a phone or website click. The provider must exist.
func (s *AnalyticsService) RecordClick(ctx context.Context, providerID string, kind entities.ClickKind) (*entities.ClickEvent, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, apperrors.NewValidationError("missing required fields: craftsmanId")
	}
	if !kind.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown click type %q", kind))
	}

	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	click := &entities.ClickEvent{
		ID:         uuid.NewString(),
		ProviderID: provider.ID,
		Kind:       kind,
		Timestamp:  entities.At(s.now().UTC()),
	}
	if err := s.events.RecordClick(ctx, click); err != nil {
		return nil, err
	}

	event := entities.NewClickAnalyticsEvent(click)
	event.CompanyName = provider.CompanyName
	s.publish(ctx, event, providers.EventChannelAnalytics, providers.GetProviderChannel(provider.ID))
	return click, nil
}

// RecordPageView stores one load of the public site
func (s *AnalyticsService) RecordPageView(ctx context.Context) (*entities.PageView, error) {
	view := &entities.PageView{
		ID:        uuid.NewString(),
		Timestamp: entities.At(s.now().UTC()),
	}
	if err := s.events.RecordPageView(ctx, view); err != nil {
		return nil, err
	}

	s.publish(ctx, entities.NewPageViewAnalyticsEvent(view), providers.EventChannelAnalytics)
	return view, nil
}

// RecordCategoryClick stores a category selection. Any non-empty label is
// accepted so that retired categories keep being counted.
func (s *AnalyticsService) RecordCategoryClick(ctx context.Context, category string) (*entities.CategoryClick, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.NewValidationError("missing required fields: category")
	}

	click := &entities.CategoryClick{
		ID:        uuid.NewString(),
		Category:  category,
		Timestamp: entities.At(s.now().UTC()),
	}
	if err := s.events.RecordCategoryClick(ctx, click); err != nil {
		return nil, err
	}

	s.publish(ctx, entities.NewCategoryClickAnalyticsEvent(click), providers.EventChannelAnalytics)
	return click, nil
}

// ListClicks returns every recorded click
func (s *AnalyticsService) ListClicks(ctx context.Context) ([]*entities.ClickEvent, error) {
	return s.events.ListClicks(ctx)
}

// publish counts the event and fans it out. The write already succeeded, so
// bus failures are only logged.
func (s *AnalyticsService) publish(ctx context.Context, event *entities.AnalyticsEvent, channels ...string) {
	observability.RecordEventMetric(ctx, s.metrics, string(event.Type))
	if s.bus == nil {
		return
	}
	for _, channel := range channels {
		if err := s.bus.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("channel", channel).
				Str("event_type", string(event.Type)).
				Msg("Failed to publish analytics event")
		}
	}
}
