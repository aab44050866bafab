package route

import (
	"math"
	"time"

	"github.com/chrissnell/trackreconcile/internal/geo"
	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/types"
	"go.uber.org/zap"
)

// SamplerParams bounds the density and shape of a rendered route
type SamplerParams struct {
	// TargetSpacingM is the path distance between emitted points in the first pass
	TargetSpacingM float64

	// MaxPoints is the hard cap on the rendered route length
	MaxPoints int

	// MaxSegmentM is the longest straight line a renderer should ever draw
	MaxSegmentM float64
}

// DefaultSamplerParams returns the display policy used by the mobile clients
func DefaultSamplerParams() SamplerParams {
	return SamplerParams{
		TargetSpacingM: 35.0,
		MaxPoints:      500,
		MaxSegmentM:    60.0,
	}
}

// SampleStats describes what each sampling pass did
type SampleStats struct {
	InputPoints      int `json:"input_points"`
	DistancePass     int `json:"distance_pass_points"`
	CapPass          int `json:"cap_pass_points"`
	Interpolated     int `json:"interpolated_points"`
	OverlongSegments int `json:"overlong_segments"`
}

// Sampler reduces a route to a bounded, smooth set of display points
type Sampler struct {
	params SamplerParams
	logger *zap.SugaredLogger
}

// NewSampler creates a sampler. A nil logger uses the package logger.
func NewSampler(params SamplerParams, logger *zap.SugaredLogger) *Sampler {
	return &Sampler{
		params: params,
		logger: log.OrDefault(logger),
	}
}

// Sample runs the distance, cap, segment-length and diagnostic passes
func (s *Sampler) Sample(points []types.LocationSample) (types.RenderRoute, SampleStats) {
	stats := SampleStats{InputPoints: len(points)}
	if len(points) == 0 {
		return types.RenderRoute{}, stats
	}

	thinned := thinByDistance(points, s.params.TargetSpacingM)
	stats.DistancePass = len(thinned)

	var rendered types.RenderRoute
	if s.params.MaxPoints >= 2 && len(thinned) > s.params.MaxPoints {
		rendered = resampleByDistance(points, s.params.MaxPoints, s.params.TargetSpacingM)
	} else {
		rendered = make(types.RenderRoute, len(thinned))
		for i, p := range thinned {
			rendered[i] = types.RenderPointFromSample(p)
		}
	}
	stats.CapPass = len(rendered)

	rendered, stats.Interpolated = s.capSegmentLength(rendered)
	stats.OverlongSegments = s.checkSegments(rendered)

	return rendered, stats
}

// thinByDistance keeps the first point, then every point whose accumulated
// path distance since the last kept point reaches spacingM, then the last point
func thinByDistance(points []types.LocationSample, spacingM float64) []types.LocationSample {
	if len(points) <= 2 {
		out := make([]types.LocationSample, len(points))
		copy(out, points)
		return out
	}

	out := []types.LocationSample{points[0]}
	lastEmitted := 0
	accumulated := 0.0
	for i := 1; i < len(points); i++ {
		accumulated += segmentDistance(points[i-1], points[i])
		if accumulated >= spacingM {
			out = append(out, points[i])
			lastEmitted = i
			accumulated = 0
		}
	}

	if lastEmitted != len(points)-1 {
		out = append(out, points[len(points)-1])
	}
	return out
}

// resampleByDistance walks the path and emits at most maxPoints points evenly
// spaced by path distance, first and last included. The spacing is never
// tighter than minSpacingM. Points falling between two samples are
// interpolated.
func resampleByDistance(points []types.LocationSample, maxPoints int, minSpacingM float64) types.RenderRoute {
	n := len(points)
	cumulative := make([]float64, n)
	for i := 1; i < n; i++ {
		cumulative[i] = cumulative[i-1] + segmentDistance(points[i-1], points[i])
	}
	total := cumulative[n-1]

	spacing := math.Max(minSpacingM, total/float64(maxPoints-1))
	if total <= 0 || spacing <= 0 {
		return types.RenderRoute{
			types.RenderPointFromSample(points[0]),
			types.RenderPointFromSample(points[n-1]),
		}
	}

	steps := int(math.Ceil(total / spacing))
	if steps > maxPoints-1 {
		steps = maxPoints - 1
	}
	if steps < 1 {
		steps = 1
	}
	step := total / float64(steps)

	out := make(types.RenderRoute, 0, steps+1)
	out = append(out, types.RenderPointFromSample(points[0]))
	j := 1
	for k := 1; k < steps; k++ {
		target := float64(k) * step
		for j < n-1 && cumulative[j] < target {
			j++
		}

		a, b := points[j-1], points[j]
		segLen := cumulative[j] - cumulative[j-1]
		if segLen <= 0 || target >= cumulative[j] {
			out = append(out, types.RenderPointFromSample(b))
			continue
		}
		f := (target - cumulative[j-1]) / segLen
		out = append(out, interpolatePoint(types.RenderPointFromSample(a), types.RenderPointFromSample(b), f))
	}
	out = append(out, types.RenderPointFromSample(points[n-1]))

	return out
}

// capSegmentLength inserts evenly spaced points into every segment longer than
// MaxSegmentM. Insertions never push the route over MaxPoints: when the full
// set does not fit, the budget goes to whichever segment currently has the
// longest sub-segment and the leftovers are reported by the diagnostic pass.
func (s *Sampler) capSegmentLength(route types.RenderRoute) (types.RenderRoute, int) {
	if len(route) < 2 || s.params.MaxSegmentM <= 0 {
		return route, 0
	}

	distances := make([]float64, len(route)-1)
	needed := make([]int, len(route)-1)
	totalNeeded := 0
	for i := 1; i < len(route); i++ {
		d := renderDistance(route[i-1], route[i])
		distances[i-1] = d
		if d > s.params.MaxSegmentM {
			needed[i-1] = int(math.Ceil(d / s.params.MaxSegmentM))
			totalNeeded += needed[i-1]
		}
	}
	if totalNeeded == 0 {
		return route, 0
	}

	budget := totalNeeded
	if s.params.MaxPoints > 0 {
		budget = s.params.MaxPoints - len(route)
		if budget < 0 {
			budget = 0
		}
	}

	inserts := needed
	if budget < totalNeeded {
		s.logger.Warnw("segment cap limited by point budget",
			"needed", totalNeeded, "budget", budget, "points", len(route))
		inserts = allocateInsertions(distances, needed, budget)
	}

	out := make(types.RenderRoute, 0, len(route)+budget)
	inserted := 0
	for i := 0; i < len(route)-1; i++ {
		a, b := route[i], route[i+1]
		out = append(out, a)
		k := inserts[i]
		for j := 1; j <= k; j++ {
			out = append(out, interpolatePoint(a, b, float64(j)/float64(k+1)))
		}
		inserted += k
	}
	out = append(out, route[len(route)-1])

	return out, inserted
}

// allocateInsertions hands out budget insertions one at a time to the segment
// whose sub-segments are currently longest, never exceeding what it needs
func allocateInsertions(distances []float64, needed []int, budget int) []int {
	alloc := make([]int, len(needed))
	for ; budget > 0; budget-- {
		best := -1
		bestLen := 0.0
		for i, d := range distances {
			if alloc[i] >= needed[i] {
				continue
			}
			if sub := d / float64(alloc[i]+1); best < 0 || sub > bestLen {
				best, bestLen = i, sub
			}
		}
		if best < 0 {
			break
		}
		alloc[best]++
	}
	return alloc
}

// checkSegments logs every segment still at or above the cap. A non-zero
// result on a short route points at a defect in the passes above.
func (s *Sampler) checkSegments(route types.RenderRoute) int {
	overlong := 0
	for i := 1; i < len(route); i++ {
		d := renderDistance(route[i-1], route[i])
		if d >= s.params.MaxSegmentM {
			overlong++
			s.logger.Warnw("rendered segment exceeds cap",
				"index", i, "distance_m", d, "cap_m", s.params.MaxSegmentM)
		}
	}
	return overlong
}

func interpolatePoint(a, b types.RenderPoint, f float64) types.RenderPoint {
	lat, lng := geo.Interpolate(a.Lat, a.Lng, b.Lat, b.Lng, f)
	p := types.RenderPoint{Lat: lat, Lng: lng}

	if a.Altitude != nil && b.Altitude != nil {
		p.Altitude = types.Float64(geo.Lerp(*a.Altitude, *b.Altitude, f))
	}

	t1, err1 := types.ParseTimestamp(a.Timestamp)
	t2, err2 := types.ParseTimestamp(b.Timestamp)
	if err1 == nil && err2 == nil {
		offset := time.Duration(float64(t2.Sub(t1)) * f)
		p.Timestamp = types.FormatTimestamp(t1.Add(offset))
	}

	return p
}

func renderDistance(a, b types.RenderPoint) float64 {
	return geo.DistanceMeters(a.Lat, a.Lng, b.Lat, b.Lng)
}
