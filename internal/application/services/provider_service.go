package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

// ProviderQuery is a directory search: a category filter plus whatever the
// browser could tell about the visitor's position
type ProviderQuery struct {
	Category string
	Location LocationRequest
}

// ProviderSearchResult is the ranked directory with the location it was
// ranked against
type ProviderSearchResult struct {
	Providers []*entities.ServiceProvider `json:"providers"`
	Location  Acquisition                 `json:"location"`
}

// ProviderService handles business logic for service providers
type ProviderService struct {
	repo     repositories.ProviderRepository
	ranking  *RankingService
	location *LocationService
}

// NewProviderService creates a new provider service. location may be nil, in
// which case searches keep insertion order.
func NewProviderService(repo repositories.ProviderRepository, ranking *RankingService, location *LocationService) *ProviderService {
	if ranking == nil {
		ranking = NewRankingService()
	}
	return &ProviderService{
		repo:     repo,
		ranking:  ranking,
		location: location,
	}
}

// List returns every provider in insertion order
func (s *ProviderService) List(ctx context.Context) ([]*entities.ServiceProvider, error) {
	return s.repo.List(ctx)
}

// Search acquires the visitor location and returns the filtered, ranked
// directory. An empty category selects every provider; a failed acquisition
// is not an error.
func (s *ProviderService) Search(ctx context.Context, query ProviderQuery) (*ProviderSearchResult, error) {
	category := strings.TrimSpace(query.Category)
	if category == "" {
		category = entities.CategoryAll
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	acq := Acquisition{Source: entities.LocationSourceUnknown}
	if s.location != nil {
		acq = s.location.Acquire(ctx, query.Location)
	}

	return &ProviderSearchResult{
		Providers: s.ranking.Rank(all, category, acq.Location),
		Location:  acq,
	}, nil
}

// GetByID retrieves a provider by ID
func (s *ProviderService) GetByID(ctx context.Context, id string) (*entities.ServiceProvider, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new provider
func (s *ProviderService) Create(ctx context.Context, provider *entities.ServiceProvider) (*entities.ServiceProvider, error) {
	if provider == nil {
		return nil, apperrors.NewValidationError("provider is required")
	}
	p := provider.Clone()
	p.ID = ""
	p.Normalize()
	if err := ValidateProvider(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("provider_id", p.ID).
		Str("category", string(p.Category)).
		Msg("Provider created")
	return p, nil
}

// Update applies a partial update after validating the merged result
func (s *ProviderService) Update(ctx context.Context, id string, patch entities.ProviderPatch) (*entities.ServiceProvider, error) {
	if (patch.Lat == nil) != (patch.Lon == nil) {
		return nil, apperrors.NewValidationError("lat and lon must be updated together")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := patch.Apply(current)
	merged.Normalize()
	if err := ValidateProvider(merged); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, patch)
}

// Delete removes a provider. Recorded clicks for it are kept.
func (s *ProviderService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	observability.LoggerFromContext(ctx).Info().Str("provider_id", id).Msg("Provider deleted")
	return nil
}

// Initialize seeds the sample providers into an empty directory and returns
// how many were stored
func (s *ProviderService) Initialize(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, apperrors.NewConflictError("database already initialized")
	}

	// distinct creation times keep the seeds in listed order
	start := time.Now().UTC()
	seeded := 0
	for i, p := range SampleProviders() {
		p.CreatedAt = start.Add(time.Duration(i) * time.Microsecond)
		if err := s.repo.Create(ctx, p); err != nil {
			return seeded, fmt.Errorf("seed %q: %w", p.CompanyName, err)
		}
		seeded++
	}

	observability.LoggerFromContext(ctx).Info().Int("count", seeded).Msg("Directory initialized with sample data")
	return seeded, nil
}

// ValidateProvider checks a normalized provider before it is written
func ValidateProvider(p *entities.ServiceProvider) error {
	if missing := p.MissingFields(); len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	if !p.Category.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown category %q", p.Category))
	}
	if r := p.HourlyRate; r != nil && (!(*r > 0) || math.IsInf(*r, 0)) {
		return apperrors.NewValidationError("hourlyRate must be a positive number")
	}
	if p.Website != "" {
		u, err := url.Parse(p.Website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return apperrors.NewValidationError("website must be an http(s) URL")
		}
	}
	if loc, ok := p.Coordinates(); ok && !loc.Valid() {
		return apperrors.NewValidationError("coordinates out of range")
	}
	return nil
}

// SampleProviders returns the demo directory used by init and the seed command
func SampleProviders() []*entities.ServiceProvider {
	return []*entities.ServiceProvider{
		{
			CompanyName: "Akut VVS Service ApS",
			Address:     "Hovedgaden 123, 2100 København Ø",
			Phone:       "+45 12 34 56 78",
			HourlyRate:  entities.Float(850),
			Website:     "https://www.akutvvs.dk",
			Category:    entities.CategoryPlumber,
			Lat:         entities.Float(55.7105),
			Lon:         entities.Float(12.5772),
		},
		{
			CompanyName: "Elektrikeren 24/7",
			Address:     "Nørregade 45, 8000 Aarhus C",
			Phone:       "+45 23 45 67 89",
			HourlyRate:  entities.Float(950),
			Website:     "https://www.elektrikeren247.dk",
			Category:    entities.CategoryElectrician,
			Lat:         entities.Float(56.1590),
			Lon:         entities.Float(10.2089),
		},
		{
			CompanyName: "Nødblik & Vindue",
			Address:     "Vesterbrogade 78, 1620 København V",
			Phone:       "+45 34 56 78 90",
			HourlyRate:  entities.Float(750),
			Website:     "https://www.noedblik.dk",
			Category:    entities.CategoryGlazier,
			Lat:         entities.Float(55.6718),
			Lon:         entities.Float(12.5536),
		},
		{
			CompanyName: "Akut Låsesmed Service",
			Address:     "Åboulevarden 12, 8000 Aarhus C",
			Phone:       "+45 45 67 89 01",
			HourlyRate:  entities.Float(900),
			Website:     "https://www.akutlaasesmed.dk",
			Category:    entities.CategoryLocksmith,
			Lat:         entities.Float(56.1567),
			Lon:         entities.Float(10.2071),
		},
		{
			CompanyName: "Tag & Tætning SOS",
			Address:     "Roskildevej 234, 2630 Taastrup",
			Phone:       "+45 56 78 90 12",
			HourlyRate:  entities.Float(800),
			Category:    entities.CategoryOther,
			Subcategory: "Tømrer",
			Lat:         entities.Float(55.6512),
			Lon:         entities.Float(12.3010),
		},
		{
			CompanyName: "Varme Nu ApS",
			Address:     "Fynsgade 56, 5000 Odense C",
			Phone:       "+45 67 89 01 23",
			HourlyRate:  entities.Float(875),
			Website:     "https://www.varmenu.dk",
			Category:    entities.CategoryPlumber,
			Lat:         entities.Float(55.4030),
			Lon:         entities.Float(10.3883),
		},
	}
}
