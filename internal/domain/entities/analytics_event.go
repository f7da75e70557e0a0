package entities

import (
	"time"

	"github.com/google/uuid"
)

// AnalyticsEventType names what happened on the public site
type AnalyticsEventType string

const (
	AnalyticsEventClick         AnalyticsEventType = "click"
	AnalyticsEventPageView      AnalyticsEventType = "page_view"
	AnalyticsEventCategoryClick AnalyticsEventType = "category_click"
)

// AnalyticsEvent is published on the event bus whenever a visitor
// interaction is recorded; admin dashboards receive it over SSE.
type AnalyticsEvent struct {
	ID          string             `json:"id"`
	Type        AnalyticsEventType `json:"type"`
	ProviderID  string             `json:"providerId,omitempty"`
	CompanyName string             `json:"companyName,omitempty"`
	ClickKind   ClickKind          `json:"clickKind,omitempty"`
	Category    string             `json:"category,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

// NewClickAnalyticsEvent builds the bus event for a recorded click
func NewClickAnalyticsEvent(click *ClickEvent) *AnalyticsEvent {
	return &AnalyticsEvent{
		ID:         uuid.NewString(),
		Type:       AnalyticsEventClick,
		ProviderID: click.ProviderID,
		ClickKind:  click.Kind,
		Timestamp:  click.Timestamp.Time,
	}
}

// NewPageViewAnalyticsEvent builds the bus event for a recorded page view
func NewPageViewAnalyticsEvent(view *PageView) *AnalyticsEvent {
	return &AnalyticsEvent{
		ID:        uuid.NewString(),
		Type:      AnalyticsEventPageView,
		Timestamp: view.Timestamp.Time,
	}
}

// NewCategoryClickAnalyticsEvent builds the bus event for a recorded category click
func NewCategoryClickAnalyticsEvent(click *CategoryClick) *AnalyticsEvent {
	return &AnalyticsEvent{
		ID:        uuid.NewString(),
		Type:      AnalyticsEventCategoryClick,
		Category:  click.Category,
		Timestamp: click.Timestamp.Time,
	}
}
