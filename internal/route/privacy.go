package route

import (
	"github.com/chrissnell/trackreconcile/internal/geo"
	"github.com/chrissnell/trackreconcile/internal/types"
)

const (
	// DefaultPrivacyDistanceM is trimmed from both ends of a rendered route
	DefaultPrivacyDistanceM = 500.0

	// minPrivacyInput is the shortest track we are willing to clip at all
	minPrivacyInput = 5

	// minPrivacyOutput is the shortest clipped slice we are willing to show
	minPrivacyOutput = 3
)

// ClipPrivacy removes the first and last distanceM meters of a chronologically
// sorted route so the start and end locations are not exposed. Whenever the
// clip cannot be done safely it returns an empty route instead of falling back
// to the unclipped one. A route too short to reach distanceM from either end
// is hidden entirely.
func ClipPrivacy(sorted []types.LocationSample, distanceM float64) []types.LocationSample {
	n := len(sorted)
	if n < minPrivacyInput {
		return []types.LocationSample{}
	}

	startIdx, endIdx := 0, n
	cumulative := 0.0
	reached := false
	for i := 1; i < n; i++ {
		cumulative += segmentDistance(sorted[i-1], sorted[i])
		if cumulative >= distanceM {
			startIdx = i
			reached = true
			break
		}
	}
	if !reached {
		return []types.LocationSample{}
	}

	cumulative = 0.0
	for i := n - 1; i > 0; i-- {
		cumulative += segmentDistance(sorted[i], sorted[i-1])
		if cumulative >= distanceM {
			endIdx = i - 1
			break
		}
	}

	if startIdx >= endIdx || endIdx-startIdx < minPrivacyOutput {
		return []types.LocationSample{}
	}

	clipped := make([]types.LocationSample, endIdx-startIdx)
	copy(clipped, sorted[startIdx:endIdx])
	return clipped
}

func segmentDistance(a, b types.LocationSample) float64 {
	return geo.DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}
