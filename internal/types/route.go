package types

// RenderPoint is one display-ready point of a privacy-clipped route.
type RenderPoint struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// RenderRoute is an ordered, bounded polyline ready for a map renderer.
type RenderRoute []RenderPoint

// RenderPointFromSample copies a raw sample into a render point.
func RenderPointFromSample(s LocationSample) RenderPoint {
	p := RenderPoint{
		Lat:       s.Latitude,
		Lng:       s.Longitude,
		Timestamp: s.Timestamp,
	}
	if s.Altitude != nil {
		p.Altitude = Float64(*s.Altitude)
	}
	return p
}
