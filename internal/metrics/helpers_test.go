package metrics

import (
	"time"

	"github.com/chrissnell/trackreconcile/internal/types"
)

// metersPerDegreeLat matches geo.EarthRadiusM
const metersPerDegreeLat = 6371000.0 * 3.141592653589793 / 180.0

var trackStart = time.Date(2024, 5, 18, 7, 30, 0, 0, time.UTC)

// walkNorth builds n samples stepping stepM meters due north every stepS seconds
func walkNorth(n int, stepM, stepS float64, altitude func(i int) *float64) []types.LocationSample {
	samples := make([]types.LocationSample, n)
	for i := 0; i < n; i++ {
		s := types.LocationSample{
			Latitude:  46.0 + float64(i)*stepM/metersPerDegreeLat,
			Longitude: 7.0,
			Timestamp: trackStart.Add(time.Duration(float64(i)*stepS*1000) * time.Millisecond).Format(time.RFC3339Nano),
		}
		if altitude != nil {
			s.Altitude = altitude(i)
		}
		samples[i] = s
	}
	return samples
}

func sample(lat, lon float64, offset time.Duration, alt *float64) types.LocationSample {
	return types.LocationSample{
		Latitude:  lat,
		Longitude: lon,
		Altitude:  alt,
		Timestamp: trackStart.Add(offset).Format(time.RFC3339),
	}
}
