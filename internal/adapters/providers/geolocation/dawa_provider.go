package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/providers"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
	"github.com/zatekoja/akutvagt/backend/pkg/config"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

const (
	dawaDefaultBaseURL = "https://api.dataforsyningen.dk"
	dawaDefaultTimeout = 8 * time.Second
	dawaDefaultTTL     = 30 * 24 * time.Hour

	// only exact street-address hits carry an access point
	dawaTypeAddress = "adresse"
)

// DawaProvider implements AddressLookupProvider against the Danish address
// web API (DAWA).
type DawaProvider struct {
	client   *resty.Client
	cache    providers.CacheProvider
	cacheTTL time.Duration
	metrics  *observability.Metrics
}

// NewDawaProvider creates a DAWA address lookup provider. cache and metrics
// may be nil.
func NewDawaProvider(cfg config.AddressLookupConfig, cache providers.CacheProvider, metrics *observability.Metrics) providers.AddressLookupProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = dawaDefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = dawaDefaultTimeout
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = dawaDefaultTTL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &DawaProvider{
		client:   client,
		cache:    cache,
		cacheTTL: ttl,
		metrics:  metrics,
	}
}

type dawaAutocompleteResult struct {
	Type          string `json:"type"`
	Tekst         string `json:"tekst"`
	Forslagstekst string `json:"forslagstekst"`
	Data          struct {
		ID   string `json:"id"`
		Href string `json:"href"`
	} `json:"data"`
}

type dawaAddress struct {
	ID                string `json:"id"`
	Adressebetegnelse string `json:"adressebetegnelse"`
	Adgangsadresse    struct {
		X            *float64 `json:"x"`
		Y            *float64 `json:"y"`
		Adgangspunkt *struct {
			Koordinater []float64 `json:"koordinater"`
		} `json:"adgangspunkt"`
	} `json:"adgangsadresse"`
}

// location reads the access point ([lon, lat]) and falls back to the
// access-address x/y.
func (a *dawaAddress) location() (entities.Location, bool) {
	if p := a.Adgangsadresse.Adgangspunkt; p != nil && len(p.Koordinater) == 2 {
		return entities.Location{Latitude: p.Koordinater[1], Longitude: p.Koordinater[0]}, true
	}
	if a.Adgangsadresse.X != nil && a.Adgangsadresse.Y != nil {
		return entities.Location{Latitude: *a.Adgangsadresse.Y, Longitude: *a.Adgangsadresse.X}, true
	}
	return entities.Location{}, false
}

// Autocomplete returns the exact street-address suggestions for query
func (d *DawaProvider) Autocomplete(ctx context.Context, query string) ([]providers.AddressSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []providers.AddressSuggestion{}, nil
	}

	var results []dawaAutocompleteResult
	start := time.Now()
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        query,
			"type":     dawaTypeAddress,
			"caretpos": fmt.Sprint(utf8.RuneCountInString(query)),
			"fuzzy":    "",
		}).
		SetResult(&results).
		Get("/autocomplete")
	if err := d.check(ctx, "autocomplete", start, resp, err); err != nil {
		return nil, err
	}

	suggestions := make([]providers.AddressSuggestion, 0, len(results))
	for _, r := range results {
		if r.Type != dawaTypeAddress {
			continue
		}
		ref := r.Data.ID
		if ref == "" && r.Data.Href != "" {
			ref = refFromHref(r.Data.Href)
		}
		if ref == "" {
			continue
		}
		suggestions = append(suggestions, providers.AddressSuggestion{
			Text:        r.Tekst,
			DisplayText: r.Forslagstekst,
			Ref:         ref,
		})
	}
	return suggestions, nil
}

// Resolve loads an address by its DAWA id. Results are cached.
func (d *DawaProvider) Resolve(ctx context.Context, ref string) (*providers.ResolvedAddress, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.NewValidationError("address reference is required")
	}

	cacheKey := "dawa:v1:resolve:" + hashKey(ref)
	if d.cache != nil {
		if cached, err := d.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var resolved providers.ResolvedAddress
			if err := json.Unmarshal(cached, &resolved); err == nil {
				return &resolved, nil
			}
		}
	}

	var address dawaAddress
	start := time.Now()
	resp, err := d.client.R().
		SetContext(ctx).
		SetPathParam("id", ref).
		SetResult(&address).
		Get("/adresser/{id}")
	if resp != nil && resp.StatusCode() == 404 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("address %s not found", ref))
	}
	if err := d.check(ctx, "resolve", start, resp, err); err != nil {
		return nil, err
	}

	loc, ok := address.location()
	if !ok {
		return nil, providers.ErrLocationUnresolved
	}

	resolved := &providers.ResolvedAddress{
		ID:       address.ID,
		Text:     address.Adressebetegnelse,
		Location: loc,
	}

	if d.cache != nil {
		if data, err := json.Marshal(resolved); err == nil {
			if err := d.cache.Set(ctx, cacheKey, data, d.cacheTTL); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to cache resolved address")
			}
		}
	}
	return resolved, nil
}

// Geocode resolves the top exact street-address match for text
func (d *DawaProvider) Geocode(ctx context.Context, text string) (*entities.Location, error) {
	suggestions, err := d.Autocomplete(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, providers.ErrLocationUnresolved
	}

	resolved, err := d.Resolve(ctx, suggestions[0].Ref)
	if apperrors.IsNotFound(err) {
		return nil, providers.ErrLocationUnresolved
	}
	if err != nil {
		return nil, err
	}
	loc := resolved.Location
	return &loc, nil
}

func (d *DawaProvider) check(ctx context.Context, operation string, start time.Time, resp *resty.Response, err error) error {
	failed := err != nil || (resp != nil && resp.IsError())
	observability.RecordAddressLookupMetric(ctx, d.metrics, operation, time.Since(start), failed)

	if err != nil {
		return apperrors.NewExternalError("address lookup "+operation+" failed", err)
	}
	if resp.IsError() {
		return apperrors.NewExternalError(
			"address lookup "+operation+" failed",
			fmt.Errorf("unexpected status %d", resp.StatusCode()),
		)
	}
	return nil
}

// refFromHref takes the id from a DAWA resource link such as
// https://api.dataforsyningen.dk/adresser/<id>
func refFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base := path.Base(strings.TrimRight(u.Path, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
