package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
)

// ErrLocationUnresolved is returned by a location strategy that ran normally
// but could not produce coordinates, e.g. the user denied the permission
// prompt or no address matched. The next strategy is tried.
var ErrLocationUnresolved = errors.New("location could not be resolved")

// AddressLookupProvider defines the interface for address autocomplete and
// forward geocoding services
type AddressLookupProvider interface {
	// Autocomplete returns ranked suggestions for a partial address
	Autocomplete(ctx context.Context, query string) ([]AddressSuggestion, error)

	// Resolve loads the full address record behind a suggestion reference
	Resolve(ctx context.Context, ref string) (*ResolvedAddress, error)

	// Geocode converts free text to the coordinates of the best exact
	// street-address match. Returns ErrLocationUnresolved when nothing matches.
	Geocode(ctx context.Context, text string) (*entities.Location, error)
}

// AddressSuggestion is one autocomplete hit
type AddressSuggestion struct {
	Text        string `json:"text"`
	DisplayText string `json:"displayText"`
	Ref         string `json:"ref"`
}

// ResolvedAddress is a full address with the coordinates of its access point
type ResolvedAddress struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Location entities.Location `json:"location"`
}

// PositionSensor reports the device position
type PositionSensor interface {
	// CurrentPosition returns the current fix or ErrLocationUnresolved on
	// denial, timeout or an unavailable sensor
	CurrentPosition(ctx context.Context) (entities.Location, error)
}
