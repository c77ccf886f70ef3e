package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToWGS84_CentralMeridianOrigin(t *testing.T) {
	// At the false easting with zero northing every correction term vanishes:
	// D is zero and the footprint latitude is zero, so the point sits on the
	// equator at the central meridian.
	lat, lng := ToWGS84(250000, 0)

	assert.InDelta(t, 0.0, lat, 1e-9)
	assert.InDelta(t, 121.0, lng, 1e-9)
}

func TestToWGS84_ChanghuaPlain(t *testing.T) {
	// A point on the Changhua plain, west of the central meridian.
	lat, lng := ToWGS84(200000, 2655000)

	assert.InDelta(t, 23.999, lat, 0.02)
	assert.InDelta(t, 120.508, lng, 0.02)

	// Sanity: inside the Taiwan mainland bounding box.
	assert.Greater(t, lat, 21.5)
	assert.Less(t, lat, 25.5)
	assert.Greater(t, lng, 119.5)
	assert.Less(t, lng, 122.5)
}

func TestToWGS84_EastOfCentralMeridian(t *testing.T) {
	// Easting above the false easting must land east of 121°E.
	lat, lng := ToWGS84(300000, 2770000)

	assert.Greater(t, lng, 121.0)
	assert.Greater(t, lat, 24.5)
	assert.Less(t, lat, 25.5)
}

func TestToWGS84_Deterministic(t *testing.T) {
	// Pure function: identical inputs yield bit-identical outputs.
	lat1, lng1 := ToWGS84(201234.5, 2655678.9)
	lat2, lng2 := ToWGS84(201234.5, 2655678.9)

	assert.Equal(t, lat1, lat2)
	assert.Equal(t, lng1, lng2)
}

func TestToWGS84_NorthingOrdering(t *testing.T) {
	// Larger northing means larger latitude along the same easting.
	latSouth, _ := ToWGS84(210000, 2600000)
	latNorth, _ := ToWGS84(210000, 2700000)

	assert.Greater(t, latNorth, latSouth)
}
