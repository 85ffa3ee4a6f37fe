package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoJSONPoint(t *testing.T) {
	p := NewGeoJSONPoint(10.78, 106.70)

	assert.Equal(t, "Point", p.Type)
	assert.Equal(t, 10.78, p.Lat())
	assert.Equal(t, 106.70, p.Lon())
	// GeoJSON coordinate order is [lon, lat]
	assert.Equal(t, []float64{106.70, 10.78}, p.Coordinates)
}

func TestGeoJSONPointAccessorsNilSafe(t *testing.T) {
	var p *GeoJSONPoint
	assert.Equal(t, 0.0, p.Lat())
	assert.Equal(t, 0.0, p.Lon())

	empty := &GeoJSONPoint{}
	assert.Equal(t, 0.0, empty.Lat())
	assert.Equal(t, 0.0, empty.Lon())
}

func TestGeoJSONPointValue(t *testing.T) {
	p := NewGeoJSONPoint(10.78, 106.70)

	value, err := p.Value()
	require.NoError(t, err)

	wktString, ok := value.(string)
	require.True(t, ok)
	assert.Contains(t, wktString, "SRID=4326;")
	assert.Contains(t, wktString, "POINT")

	var nilPoint *GeoJSONPoint
	value, err = nilPoint.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}
