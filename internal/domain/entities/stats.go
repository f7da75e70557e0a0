package entities

import "fmt"

// TimeWindow restricts analytics to recent events
type TimeWindow string

const (
	WindowAll   TimeWindow = "all"
	WindowToday TimeWindow = "today"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
)

// ParseTimeWindow maps a query value to a window; empty means all.
func ParseTimeWindow(value string) (TimeWindow, error) {
	switch TimeWindow(value) {
	case "", WindowAll:
		return WindowAll, nil
	case WindowToday, WindowWeek, WindowMonth:
		return TimeWindow(value), nil
	default:
		return "", fmt.Errorf("unknown time window %q", value)
	}
}

// ProviderClickStats holds click counts for one provider
type ProviderClickStats struct {
	Provider      *ServiceProvider `json:"craftsman"`
	PhoneClicks   int              `json:"phoneClicks"`
	WebsiteClicks int              `json:"websiteClicks"`
	TotalClicks   int              `json:"totalClicks"`
}

// ClickTotals sums ProviderClickStats over every provider
type ClickTotals struct {
	PhoneClicks   int `json:"phoneClicks"`
	WebsiteClicks int `json:"websiteClicks"`
	TotalClicks   int `json:"totalClicks"`
}

// CategoryCount holds how often a category was opened
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
