package route

import (
	"time"

	"github.com/chrissnell/trackreconcile/internal/types"
)

const metersPerDegreeLat = 6371000.0 * 3.141592653589793 / 180.0

var trackStart = time.Date(2024, 6, 2, 6, 15, 0, 0, time.UTC)

// walkNorth builds n samples stepping stepM meters due north every stepS seconds
func walkNorth(n int, stepM, stepS float64, altitude func(i int) *float64) []types.LocationSample {
	samples := make([]types.LocationSample, n)
	for i := 0; i < n; i++ {
		s := types.LocationSample{
			Latitude:  47.0 + float64(i)*stepM/metersPerDegreeLat,
			Longitude: 8.5,
			Timestamp: types.FormatTimestamp(trackStart.Add(time.Duration(float64(i)*stepS) * time.Second)),
		}
		if altitude != nil {
			s.Altitude = altitude(i)
		}
		samples[i] = s
	}
	return samples
}

func maxSegmentM(r types.RenderRoute) float64 {
	longest := 0.0
	for i := 1; i < len(r); i++ {
		if d := renderDistance(r[i-1], r[i]); d > longest {
			longest = d
		}
	}
	return longest
}
