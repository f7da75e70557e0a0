package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/providers"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
	"github.com/zatekoja/akutvagt/backend/pkg/config"
	"github.com/zatekoja/akutvagt/backend/pkg/debounce"
)

// User-visible messages, in the site's language
const (
	msgAddressLookupFailed = "Adressen kunne ikke slås op lige nu. Prøv igen."
	msgAddressNotFound     = "Adressen blev ikke fundet. Vælg en adresse fra listen."
	msgDeviceFailed        = "Din placering kunne ikke bestemmes."
)

// Device error codes reported by the browser geolocation API
const (
	DeviceErrorDenied      = "denied"
	DeviceErrorTimeout     = "timeout"
	DeviceErrorUnavailable = "unavailable"
)

// LocationStrategy is one way of obtaining the user location. Locate returns
// providers.ErrLocationUnresolved when it ran normally but found nothing.
type LocationStrategy interface {
	Source() entities.LocationSource
	Timeout() time.Duration
	Locate(ctx context.Context) (entities.Location, error)
}

// Acquisition is the outcome of running the strategy chain. When Known is
// false ranking keeps insertion order.
type Acquisition struct {
	Location *entities.Location      `json:"location,omitempty"`
	Source   entities.LocationSource `json:"source"`
	Known    bool                    `json:"known"`
	Messages []string                `json:"messages,omitempty"`
}

// LocationRequest is what the browser reports: a device fix or the device
// error code, and optionally a typed address
type LocationRequest struct {
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	DeviceError string   `json:"deviceError,omitempty"`
	Address     string   `json:"address,omitempty"`
}

// ReportedPosition is a PositionSensor fed by the position the browser
// obtained from navigator.geolocation
type ReportedPosition struct {
	Lat, Lon    *float64
	DeviceError string
}

// CurrentPosition returns the reported fix. A missing, invalid or failed fix
// is ErrLocationUnresolved.
func (r ReportedPosition) CurrentPosition(ctx context.Context) (entities.Location, error) {
	if r.DeviceError != "" || r.Lat == nil || r.Lon == nil {
		return entities.Location{}, providers.ErrLocationUnresolved
	}
	loc := entities.Location{Latitude: *r.Lat, Longitude: *r.Lon}
	if !loc.Valid() {
		return entities.Location{}, providers.ErrLocationUnresolved
	}
	return loc, nil
}

type sensorStrategy struct {
	sensor  providers.PositionSensor
	timeout time.Duration
}

func (s sensorStrategy) Source() entities.LocationSource { return entities.LocationSourceDevice }
func (s sensorStrategy) Timeout() time.Duration          { return s.timeout }

func (s sensorStrategy) Locate(ctx context.Context) (entities.Location, error) {
	return s.sensor.CurrentPosition(ctx)
}

type addressStrategy struct {
	lookup    providers.AddressLookupProvider
	text      string
	minLength int
	timeout   time.Duration
}

func (s addressStrategy) Source() entities.LocationSource { return entities.LocationSourceAddress }
func (s addressStrategy) Timeout() time.Duration          { return s.timeout }

func (s addressStrategy) Locate(ctx context.Context) (entities.Location, error) {
	text := strings.TrimSpace(s.text)
	if utf8.RuneCountInString(text) < s.minLength {
		return entities.Location{}, providers.ErrLocationUnresolved
	}
	loc, err := s.lookup.Geocode(ctx, text)
	if err != nil {
		return entities.Location{}, err
	}
	return *loc, nil
}

// LocationService acquires the user location and serves address suggestions
type LocationService struct {
	lookup    providers.AddressLookupProvider
	debouncer *debounce.Debouncer
	cfg       config.LocationConfig
	metrics   *observability.Metrics
}

// NewLocationService creates a new location service
func NewLocationService(lookup providers.AddressLookupProvider, cfg config.LocationConfig, metrics *observability.Metrics) *LocationService {
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = 3
	}
	return &LocationService{
		lookup:    lookup,
		debouncer: debounce.New(cfg.DebounceInterval),
		cfg:       cfg,
		metrics:   metrics,
	}
}

// Strategies returns the chain for a request: the device sensor first, then
// the typed address.
func (s *LocationService) Strategies(sensor providers.PositionSensor, address string) []LocationStrategy {
	return []LocationStrategy{
		sensorStrategy{sensor: sensor, timeout: s.cfg.SensorTimeout},
		addressStrategy{lookup: s.lookup, text: address, minLength: s.cfg.MinQueryLength, timeout: s.cfg.GeocodeTimeout},
	}
}

// Acquire runs the default chain for what the browser reported
func (s *LocationService) Acquire(ctx context.Context, req LocationRequest) Acquisition {
	sensor := ReportedPosition{Lat: req.Lat, Lon: req.Lon, DeviceError: req.DeviceError}
	return s.AcquireWith(ctx, s.Strategies(sensor, req.Address)...)
}

// AcquireWith tries strategies in order and stops at the first success. It
// never fails: when nothing resolves the result is the unknown location with
// messages for failures the user should know about. Nothing is retried.
func (s *LocationService) AcquireWith(ctx context.Context, strategies ...LocationStrategy) Acquisition {
	logger := observability.LoggerFromContext(ctx)
	var messages []string

	for _, strategy := range strategies {
		loc, err := runStrategy(ctx, strategy)
		if err == nil {
			observability.RecordLocationMetric(ctx, s.metrics, string(strategy.Source()))
			return Acquisition{Location: &loc, Source: strategy.Source(), Known: true, Messages: messages}
		}

		if errors.Is(err, providers.ErrLocationUnresolved) {
			if strategy.Source() == entities.LocationSourceAddress && hasText(strategy) {
				messages = append(messages, msgAddressNotFound)
			}
			continue
		}

		logger.Warn().Err(err).Str("source", string(strategy.Source())).Msg("Location strategy failed")
		if strategy.Source() == entities.LocationSourceAddress {
			messages = append(messages, msgAddressLookupFailed)
		} else {
			messages = append(messages, msgDeviceFailed)
		}
	}

	observability.RecordLocationMetric(ctx, s.metrics, string(entities.LocationSourceUnknown))
	return Acquisition{Source: entities.LocationSourceUnknown, Messages: messages}
}

func runStrategy(ctx context.Context, strategy LocationStrategy) (entities.Location, error) {
	if t := strategy.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	return strategy.Locate(ctx)
}

func hasText(strategy LocationStrategy) bool {
	a, ok := strategy.(addressStrategy)
	return ok && utf8.RuneCountInString(strings.TrimSpace(a.text)) >= a.minLength
}

// Suggest returns address suggestions for a partially typed address. Queries
// shorter than the minimum length return no suggestions without calling the
// lookup service. Calls sharing a session are debounced: a newer call makes
// older waiting ones return debounce.ErrSuperseded.
func (s *LocationService) Suggest(ctx context.Context, session, query string) ([]providers.AddressSuggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < s.cfg.MinQueryLength {
		return []providers.AddressSuggestion{}, nil
	}

	fetch := func(ctx context.Context) ([]providers.AddressSuggestion, error) {
		return s.lookup.Autocomplete(ctx, query)
	}
	if session == "" {
		return fetch(ctx)
	}
	return debounce.Run(ctx, s.debouncer, session, fetch)
}

// Resolve returns the address and coordinates behind a suggestion
func (s *LocationService) Resolve(ctx context.Context, ref string) (*providers.ResolvedAddress, error) {
	ctx, cancel := context.WithTimeout(ctx, s.geocodeTimeout())
	defer cancel()
	return s.lookup.Resolve(ctx, ref)
}

func (s *LocationService) geocodeTimeout() time.Duration {
	if s.cfg.GeocodeTimeout > 0 {
		return s.cfg.GeocodeTimeout
	}
	return 8 * time.Second
}
