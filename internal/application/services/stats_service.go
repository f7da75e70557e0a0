package services

import (
	"context"
	"encoding/csv"
	"io"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
)

// CSVHeader is the first row of the statistics export
var CSVHeader = []string{"company", "category", "phone_clicks", "website_clicks", "total_clicks"}

// ProviderStatsReport is the provider statistics table with its sum row
type ProviderStatsReport struct {
	Window      entities.TimeWindow           `json:"window"`
	GeneratedAt time.Time                     `json:"generatedAt"`
	Stats       []entities.ProviderClickStats `json:"stats"`
	Totals      entities.ClickTotals          `json:"totals"`
}

// StatsService aggregates click, page view and category click events over
// calendar time windows. Window cutoffs are computed in the configured zone.
type StatsService struct {
	providers repositories.ProviderRepository
	events    repositories.EventRepository
	location  *time.Location
	now       func() time.Time
}

// NewStatsService creates a new stats service. A nil location means UTC.
func NewStatsService(providers repositories.ProviderRepository, events repositories.EventRepository, location *time.Location) *StatsService {
	if location == nil {
		location = time.UTC
	}
	return &StatsService{
		providers: providers,
		events:    events,
		location:  location,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to compute window cutoffs
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// Cutoff returns the earliest instant included in window, or false for the
// unbounded window. Week and month subtract calendar days and months from the
// local wall clock rather than fixed durations.
func (s *StatsService) Cutoff(window entities.TimeWindow) (time.Time, bool) {
	now := s.now().In(s.location)
	switch window {
	case entities.WindowToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location), true
	case entities.WindowWeek:
		return now.AddDate(0, 0, -7), true
	case entities.WindowMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

// filter returns a predicate for window. An event exactly at the cutoff is
// kept; events without a timestamp only count in the unbounded window.
func (s *StatsService) filter(window entities.TimeWindow) func(entities.Timestamp) bool {
	cutoff, bounded := s.Cutoff(window)
	if !bounded {
		return func(entities.Timestamp) bool { return true }
	}
	return func(ts entities.Timestamp) bool {
		return !ts.IsZero() && !ts.Before(cutoff)
	}
}

// ProviderStats counts phone and website clicks per provider. Every provider
// appears, clicks for unknown providers are ignored, and the result is sorted
// by total descending with ties in provider list order.
func (s *StatsService) ProviderStats(providers []*entities.ServiceProvider, clicks []*entities.ClickEvent, window entities.TimeWindow) []entities.ProviderClickStats {
	stats := make([]entities.ProviderClickStats, 0, len(providers))
	index := make(map[string]int, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		if _, dup := index[p.ID]; dup {
			continue
		}
		index[p.ID] = len(stats)
		stats = append(stats, entities.ProviderClickStats{Provider: p})
	}

	keep := s.filter(window)
	for _, c := range clicks {
		if c == nil || !keep(c.Timestamp) {
			continue
		}
		i, ok := index[c.ProviderID]
		if !ok {
			continue
		}
		switch c.Kind {
		case entities.ClickKindPhone:
			stats[i].PhoneClicks++
		case entities.ClickKindWebsite:
			stats[i].WebsiteClicks++
		default:
			continue
		}
		stats[i].TotalClicks++
	}

	slices.SortStableFunc(stats, func(a, b entities.ProviderClickStats) int {
		return b.TotalClicks - a.TotalClicks
	})
	return stats
}

// CategoryStats counts category clicks. Every known category appears, followed
// by other labels in order of first appearance; sorted by count descending.
func (s *StatsService) CategoryStats(clicks []*entities.CategoryClick, window entities.TimeWindow) []entities.CategoryCount {
	counts := make([]entities.CategoryCount, 0, len(entities.Categories))
	index := make(map[string]int)
	for _, c := range entities.Categories {
		index[string(c)] = len(counts)
		counts = append(counts, entities.CategoryCount{Category: string(c)})
	}

	keep := s.filter(window)
	for _, c := range clicks {
		if c == nil || c.Category == "" || !keep(c.Timestamp) {
			continue
		}
		i, ok := index[c.Category]
		if !ok {
			i = len(counts)
			index[c.Category] = i
			counts = append(counts, entities.CategoryCount{Category: c.Category})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b entities.CategoryCount) int {
		return b.Count - a.Count
	})
	return counts
}

// PageViewCount counts the page views inside window
func (s *StatsService) PageViewCount(views []*entities.PageView, window entities.TimeWindow) int {
	keep := s.filter(window)
	n := 0
	for _, v := range views {
		if v != nil && keep(v.Timestamp) {
			n++
		}
	}
	return n
}

// Totals sums the per-provider counts
func Totals(stats []entities.ProviderClickStats) entities.ClickTotals {
	var t entities.ClickTotals
	for _, s := range stats {
		t.PhoneClicks += s.PhoneClicks
		t.WebsiteClicks += s.WebsiteClicks
		t.TotalClicks += s.TotalClicks
	}
	return t
}

// WriteCSV writes the statistics table as RFC 4180 CSV
func WriteCSV(w io.Writer, stats []entities.ProviderClickStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, s := range stats {
		var company, category string
		if s.Provider != nil {
			company = s.Provider.CompanyName
			category = string(s.Provider.Category)
		}
		if err := cw.Write([]string{
			company,
			category,
			strconv.Itoa(s.PhoneClicks),
			strconv.Itoa(s.WebsiteClicks),
			strconv.Itoa(s.TotalClicks),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName returns the download name for a CSV export made today
func (s *StatsService) ExportFileName() string {
	return "akutvagt_statistik_" + s.now().In(s.location).Format("2006-01-02") + ".csv"
}

// Compute loads providers and clicks concurrently and builds the provider
// statistics report for window
func (s *StatsService) Compute(ctx context.Context, window entities.TimeWindow) (*ProviderStatsReport, error) {
	var providers []*entities.ServiceProvider
	var clicks []*entities.ClickEvent

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		providers, err = s.providers.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		clicks, err = s.events.ListClicks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := s.ProviderStats(providers, clicks, window)
	return &ProviderStatsReport{
		Window:      window,
		GeneratedAt: s.now().UTC(),
		Stats:       stats,
		Totals:      Totals(stats),
	}, nil
}

// ComputeForProvider returns the click statistics of one provider
func (s *StatsService) ComputeForProvider(ctx context.Context, id string, window entities.TimeWindow) (*entities.ProviderClickStats, error) {
	var provider *entities.ServiceProvider
	var clicks []*entities.ClickEvent

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		provider, err = s.providers.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		clicks, err = s.events.ListClicks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := s.ProviderStats([]*entities.ServiceProvider{provider}, clicks, window)
	return &stats[0], nil
}

// ComputeCategories loads category clicks and aggregates them
func (s *StatsService) ComputeCategories(ctx context.Context, window entities.TimeWindow) ([]entities.CategoryCount, error) {
	clicks, err := s.events.ListCategoryClicks(ctx)
	if err != nil {
		return nil, err
	}
	return s.CategoryStats(clicks, window), nil
}

// ComputePageViews loads page views and counts them
func (s *StatsService) ComputePageViews(ctx context.Context, window entities.TimeWindow) (int, error) {
	views, err := s.events.ListPageViews(ctx)
	if err != nil {
		return 0, err
	}
	return s.PageViewCount(views, window), nil
}

// ExportCSV writes the provider statistics for window as CSV
func (s *StatsService) ExportCSV(ctx context.Context, window entities.TimeWindow, w io.Writer) error {
	report, err := s.Compute(ctx, window)
	if err != nil {
		return err
	}
	return WriteCSV(w, report.Stats)
}
