package route

import (
	"testing"

	"github.com/chrissnell/trackreconcile/internal/types"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkrajina/gpxgo/gpx"
)

func testRoute() types.RenderRoute {
	return types.RenderRoute{
		{Lat: 47.001, Lng: 8.5, Altitude: types.Float64(512), Timestamp: "2024-06-02T06:20:00Z"},
		{Lat: 47.0013, Lng: 8.5004, Timestamp: "2024-06-02T06:20:30Z"},
		{Lat: 47.0016, Lng: 8.5008, Altitude: types.Float64(515.5)},
	}
}

func TestToGeoJSON(t *testing.T) {
	data, err := ToGeoJSON("session-1", testRoute())
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	line, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	require.Len(t, line, 3)
	assert.Equal(t, orb.Point{8.5, 47.001}, line[0])
	assert.Equal(t, "session-1", fc.Features[0].Properties["session_id"])
}

func TestToGeoJSON_EmptyRoute(t *testing.T) {
	data, err := ToGeoJSON("hidden", types.RenderRoute{})
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}

func TestToGPX(t *testing.T) {
	data, err := ToGPX("morning ruck", testRoute())
	require.NoError(t, err)

	doc, err := gpx.ParseBytes(data)
	require.NoError(t, err)
	require.Len(t, doc.Tracks, 1)
	assert.Equal(t, "morning ruck", doc.Tracks[0].Name)

	samples := SamplesFromGPX(doc)
	require.Len(t, samples, 3)
	assert.InDelta(t, 47.001, samples[0].Latitude, 1e-7)
	assert.InDelta(t, 8.5004, samples[1].Longitude, 1e-7)
	require.NotNil(t, samples[0].Altitude)
	assert.InDelta(t, 512, *samples[0].Altitude, 1e-6)
	assert.Nil(t, samples[1].Altitude)
	assert.Equal(t, "2024-06-02T06:20:30Z", samples[1].Timestamp)
	assert.Empty(t, samples[2].Timestamp)
}
