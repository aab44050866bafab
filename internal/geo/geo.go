// Package geo contains the great-circle primitives shared by the metrics and
// route pipelines.
package geo

import "math"

// EarthRadiusM is the mean Earth radius used for every distance in this module.
const EarthRadiusM = 6371000.0

// DistanceMeters returns the haversine distance in meters between two points
// given in decimal degrees. NaN or Inf inputs propagate to the result.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusM * c
}

// Interpolate returns the point at fraction f (0..1) along the straight line
// from (lat1, lon1) to (lat2, lon2) in coordinate space. Over the segment
// lengths the sampler works with the difference to a great-circle midpoint is
// far below GPS precision.
func Interpolate(lat1, lon1, lat2, lon2, f float64) (float64, float64) {
	return Lerp(lat1, lat2, f), Lerp(lon1, lon2, f)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
