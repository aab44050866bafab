package route

import (
	"fmt"

	"github.com/chrissnell/trackreconcile/internal/constants"
	"github.com/chrissnell/trackreconcile/internal/types"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tkrajina/gpxgo/gpx"
)

// ToGeoJSON wraps a render route in a FeatureCollection holding a single
// LineString. An empty route yields an empty collection.
func ToGeoJSON(sessionID string, r types.RenderRoute) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	if len(r) > 0 {
		line := make(orb.LineString, len(r))
		for i, p := range r {
			line[i] = orb.Point{p.Lng, p.Lat}
		}

		f := geojson.NewFeature(line)
		f.Properties["session_id"] = sessionID
		f.Properties["points"] = len(r)
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("error marshalling geojson: %w", err)
	}
	return data, nil
}

// ToGPX renders a route as a GPX 1.1 document with one track and one segment
func ToGPX(name string, r types.RenderRoute) ([]byte, error) {
	doc := &gpx.GPX{
		Creator: constants.AppName,
	}

	seg := gpx.GPXTrackSegment{}
	for _, p := range r {
		var pt gpx.GPXPoint
		pt.Latitude = p.Lat
		pt.Longitude = p.Lng
		if p.Altitude != nil {
			pt.Elevation = *gpx.NewNullableFloat64(*p.Altitude)
		}
		if t, err := types.ParseTimestamp(p.Timestamp); err == nil {
			pt.Timestamp = t
		}
		seg.Points = append(seg.Points, pt)
	}

	doc.Tracks = []gpx.GPXTrack{{
		Name:     name,
		Segments: []gpx.GPXTrackSegment{seg},
	}}

	data, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("error converting route to GPX: %w", err)
	}
	return data, nil
}

// SamplesFromGPX flattens every track point of a parsed GPX document into
// location samples. Points without a timestamp carry an empty timestamp.
func SamplesFromGPX(doc *gpx.GPX) []types.LocationSample {
	var samples []types.LocationSample
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				s := types.LocationSample{
					Latitude:  p.Latitude,
					Longitude: p.Longitude,
				}
				if p.Elevation.NotNull() {
					s.Altitude = types.Float64(p.Elevation.Value())
				}
				if !p.Timestamp.IsZero() {
					s.Timestamp = types.FormatTimestamp(p.Timestamp)
				}
				samples = append(samples, s)
			}
		}
	}
	return samples
}
