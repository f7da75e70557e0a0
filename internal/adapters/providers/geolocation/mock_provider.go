package geolocation

import (
	"context"
	"strings"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

type mockAddress struct {
	id       string
	text     string
	location entities.Location
}

var mockAddresses = []mockAddress{
	{"mock-kbh-raadhuspladsen", "Rådhuspladsen 1, 1550 København V", entities.Location{Latitude: 55.6761, Longitude: 12.5683}},
	{"mock-kbh-noerregade", "Nørregade 10, 1165 København K", entities.Location{Latitude: 55.6800, Longitude: 12.5700}},
	{"mock-kbh-hovedgaden", "Hovedgaden 123, 2100 København Ø", entities.Location{Latitude: 55.7000, Longitude: 12.5800}},
	{"mock-aarhus-noerregade", "Nørregade 45, 8000 Aarhus C", entities.Location{Latitude: 56.1629, Longitude: 10.2039}},
	{"mock-odense-fynsgade", "Fynsgade 56, 5000 Odense C", entities.Location{Latitude: 55.4038, Longitude: 10.4024}},
	{"mock-taastrup-roskildevej", "Roskildevej 234, 2630 Taastrup", entities.Location{Latitude: 55.6517, Longitude: 12.2926}},
}

// MockAddressLookupProvider serves a fixed set of Danish addresses. It is used
// in development when the public address API should not be called.
type MockAddressLookupProvider struct{}

// NewMockAddressLookupProvider creates a new mock address lookup provider
func NewMockAddressLookupProvider() providers.AddressLookupProvider {
	return &MockAddressLookupProvider{}
}

// Autocomplete returns the fixed addresses containing query, case-insensitively
func (m *MockAddressLookupProvider) Autocomplete(ctx context.Context, query string) ([]providers.AddressSuggestion, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	suggestions := make([]providers.AddressSuggestion, 0)
	if q == "" {
		return suggestions, nil
	}
	for _, a := range mockAddresses {
		if strings.Contains(strings.ToLower(a.text), q) {
			suggestions = append(suggestions, providers.AddressSuggestion{Text: a.text, DisplayText: a.text, Ref: a.id})
		}
	}
	return suggestions, nil
}

// Resolve returns the fixed address with the given id
func (m *MockAddressLookupProvider) Resolve(ctx context.Context, ref string) (*providers.ResolvedAddress, error) {
	for _, a := range mockAddresses {
		if a.id == ref {
			return &providers.ResolvedAddress{ID: a.id, Text: a.text, Location: a.location}, nil
		}
	}
	return nil, apperrors.NewNotFoundError("address " + ref + " not found")
}

// Geocode returns the first fixed address matching text
func (m *MockAddressLookupProvider) Geocode(ctx context.Context, text string) (*entities.Location, error) {
	suggestions, _ := m.Autocomplete(ctx, text)
	if len(suggestions) == 0 {
		return nil, providers.ErrLocationUnresolved
	}
	resolved, err := m.Resolve(ctx, suggestions[0].Ref)
	if err != nil {
		return nil, err
	}
	loc := resolved.Location
	return &loc, nil
}
