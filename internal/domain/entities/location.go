package entities

import "math"

// Location represents a latitude/longitude pair in decimal degrees
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Valid reports whether both coordinates are finite and within range
func (l Location) Valid() bool {
	if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// LocationSource records how a user location was obtained
type LocationSource string

const (
	LocationSourceDevice  LocationSource = "device"
	LocationSourceAddress LocationSource = "address"
	LocationSourceUnknown LocationSource = "unknown"
)
