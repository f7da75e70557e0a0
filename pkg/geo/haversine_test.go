package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{55.6761, 12.5683},
		{0, 0},
		{-33.8688, 151.2093},
		{90, 0},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p[0], p[1], p[0], p[1]))
	}
}

func TestDistance_Symmetric(t *testing.T) {
	assert.Equal(t,
		Distance(55.6761, 12.5683, 56.1629, 10.2039),
		Distance(56.1629, 10.2039, 55.6761, 12.5683),
	)
	assert.Equal(t,
		Distance(40.7128, -74.0060, 51.5074, -0.1278),
		Distance(51.5074, -0.1278, 40.7128, -74.0060),
	)
}

func TestDistance_CopenhagenAarhus(t *testing.T) {
	d := Distance(55.6761, 12.5683, 56.1629, 10.2039)
	assert.InDelta(t, 156.9, d, 0.5)
}

func TestDistance_RoundedToOneDecimal(t *testing.T) {
	d := Distance(55.68, 12.57, 55.70, 12.58)
	assert.Equal(t, d, math.Round(d*10)/10)
	assert.InDelta(t, 2.3, d, 0.1)
}

func TestDistance_OutOfRangeDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		d := Distance(120, 400, -95, -720)
		assert.False(t, math.IsNaN(d))
		assert.GreaterOrEqual(t, d, 0.0)
	})
}

func TestDistance_Antipodes(t *testing.T) {
	assert.InDelta(t, math.Pi*EarthRadiusKm, Distance(0, 0, 0, 180), 0.1)
}
