package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(19.43, -99.13, 19.43, -99.13), 1e-9)

	// Mexico City Zocalo to Angel de la Independencia, roughly 3.7 km.
	d := HaversineKm(19.4326, -99.1332, 19.4270, -99.1677)
	assert.InDelta(t, 3.67, d, 0.1)

	// One degree of latitude.
	assert.InDelta(t, 111.19, HaversineKm(0, 0, 1, 0), 0.01)

	assert.InDelta(t, HaversineKm(10, 20, 30, 40), HaversineKm(30, 40, 10, 20), 1e-9)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(19.4, -99.1))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}
