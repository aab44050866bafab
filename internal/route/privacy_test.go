package route

import (
	"testing"

	"github.com/chrissnell/trackreconcile/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipPrivacy(t *testing.T) {
	tests := []struct {
		name      string
		samples   []types.LocationSample
		wantLen   int
		wantFirst int
		wantLast  int
	}{
		{
			name:    "fewer than five points",
			samples: walkNorth(4, 300, 60, nil),
			wantLen: 0,
		},
		{
			name:    "shorter than privacy distance",
			samples: walkNorth(10, 10, 5, nil),
			wantLen: 0,
		},
		{
			name:    "window collapses",
			samples: walkNorth(31, 30, 10, nil),
			wantLen: 0,
		},
		{
			name:    "clipped slice below three points",
			samples: walkNorth(36, 30, 10, nil),
			wantLen: 0,
		},
		{
			name:      "smallest visible slice",
			samples:   walkNorth(38, 30, 10, nil),
			wantLen:   3,
			wantFirst: 17,
			wantLast:  19,
		},
		{
			name:      "both ends trimmed",
			samples:   walkNorth(100, 30, 10, nil),
			wantLen:   65,
			wantFirst: 17,
			wantLast:  81,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipPrivacy(tt.samples, DefaultPrivacyDistanceM)
			require.NotNil(t, got)
			require.Len(t, got, tt.wantLen)
			if tt.wantLen == 0 {
				return
			}
			assert.Equal(t, tt.samples[tt.wantFirst], got[0])
			assert.Equal(t, tt.samples[tt.wantLast], got[len(got)-1])
		})
	}
}

func TestClipPrivacy_HidesEndpoints(t *testing.T) {
	samples := walkNorth(200, 12, 6, nil)
	clipped := ClipPrivacy(samples, DefaultPrivacyDistanceM)
	require.NotEmpty(t, clipped)

	first, last := samples[0], samples[len(samples)-1]
	assert.GreaterOrEqual(t, segmentDistance(first, clipped[0]), DefaultPrivacyDistanceM-0.01)
	assert.GreaterOrEqual(t, segmentDistance(last, clipped[len(clipped)-1]), DefaultPrivacyDistanceM-0.01)
}

func TestClipPrivacy_ReturnsCopy(t *testing.T) {
	samples := walkNorth(100, 30, 10, nil)
	original := samples[17]

	clipped := ClipPrivacy(samples, DefaultPrivacyDistanceM)
	require.NotEmpty(t, clipped)
	clipped[0].Latitude = 0

	assert.Equal(t, original, samples[17])
}
