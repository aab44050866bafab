package route

import (
	"testing"

	"github.com/chrissnell/trackreconcile/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBuilder() *Builder {
	return NewBuilder(DefaultParams(), zap.NewNop().Sugar())
}

func TestBuildRenderRoute_PrivacyFloor(t *testing.T) {
	tests := []struct {
		name    string
		samples []types.LocationSample
	}{
		{"no samples", nil},
		{"four samples", walkNorth(4, 400, 120, nil)},
		{"short walk", walkNorth(30, 10, 5, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildRenderRoute(tt.samples)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestBuild_ModerateRoute(t *testing.T) {
	samples := walkNorth(300, 11, 4, func(i int) *float64 { return types.Float64(500 + float64(i)) })

	rendered, stats := newTestBuilder().Build(samples)

	require.NotEmpty(t, rendered)
	assert.LessOrEqual(t, len(rendered), 500)
	assert.Less(t, maxSegmentM(rendered), 60.0)
	assert.Equal(t, 300, stats.RawPoints)
	assert.Less(t, stats.ClippedPoints, 300)
	assert.Equal(t, 0, stats.Sampling.OverlongSegments)

	start := types.RenderPointFromSample(samples[0])
	end := types.RenderPointFromSample(samples[len(samples)-1])
	assert.GreaterOrEqual(t, renderDistance(start, rendered[0]), 499.0)
	assert.GreaterOrEqual(t, renderDistance(end, rendered[len(rendered)-1]), 499.0)
}

func TestBuild_LongRouteIsBounded(t *testing.T) {
	samples := walkNorth(6000, 10, 4, nil)

	rendered, _ := newTestBuilder().Build(samples)

	assert.Len(t, rendered, 500)
}

func TestBuild_RouteWithinCapKeepsShortSegments(t *testing.T) {
	tests := []struct {
		name    string
		samples int
	}{
		{"22 km", 2201},
		{"25 km", 2501},
		{"29 km", 2901},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, stats := newTestBuilder().Build(walkNorth(tt.samples, 10, 4, nil))

			require.NotEmpty(t, rendered)
			assert.Greater(t, stats.Sampling.DistancePass, 500)
			assert.LessOrEqual(t, len(rendered), 500)
			assert.LessOrEqual(t, maxSegmentM(rendered), 60.0)
			assert.Zero(t, stats.Sampling.OverlongSegments)
		})
	}
}

func TestBuild_OrderIndependentAndIdempotent(t *testing.T) {
	samples := walkNorth(250, 15, 5, nil)
	reversed := make([]types.LocationSample, len(samples))
	for i, s := range samples {
		reversed[len(samples)-1-i] = s
	}
	snapshot := make([]types.LocationSample, len(reversed))
	copy(snapshot, reversed)

	b := newTestBuilder()
	fromSorted, _ := b.Build(samples)
	fromReversed, _ := b.Build(reversed)
	again, _ := b.Build(reversed)

	require.NotEmpty(t, fromSorted)
	assert.Equal(t, fromSorted, fromReversed)
	assert.Equal(t, fromReversed, again)
	assert.Equal(t, snapshot, reversed, "input must not be reordered in place")
}
