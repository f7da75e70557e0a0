// Package geo holds the great-circle distance used to rank service providers.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Distance returns the Haversine distance in kilometers between two points
// given in decimal degrees, rounded to one decimal place.
//
// Out-of-range coordinates are not rejected; they go straight through the trig
// functions. The intermediate term is clamped to [0, 1] so floating point noise
// never yields NaN.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return Round1(RawDistance(lat1, lon1, lat2, lon2))
}

// RawDistance is Distance without rounding.
func RawDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLat := toRadians(lat2 - lat1)
	deltaLon := toRadians(lon2 - lon1)

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)
	a := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLon*sinLon
	a = math.Min(1, math.Max(0, a))

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
