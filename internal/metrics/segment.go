package metrics

import (
	"github.com/chrissnell/trackreconcile/internal/geo"
	"github.com/chrissnell/trackreconcile/internal/types"
)

// SegmentParams holds the noise-rejection thresholds for point-to-point
// segments.
type SegmentParams struct {
	// MinElapsedS is the minimum time step for the continuous-walking rule
	MinElapsedS float64

	// MaxWalkingDistanceM bounds a single continuous-walking segment
	MaxWalkingDistanceM float64

	// MaxSpeedMps is the bounded-speed fallback (4.5 m/s is roughly 10 mph)
	MaxSpeedMps float64

	// FallbackMaxDistanceM applies when either timestamp cannot be parsed
	FallbackMaxDistanceM float64
}

// DefaultSegmentParams returns the thresholds used for tracked walks
func DefaultSegmentParams() SegmentParams {
	return SegmentParams{
		MinElapsedS:          1.0,
		MaxWalkingDistanceM:  100.0,
		MaxSpeedMps:          4.5,
		FallbackMaxDistanceM: 200.0,
	}
}

// Segment verdicts
const (
	ReasonContinuous      = "continuous"
	ReasonBoundedSpeed    = "bounded_speed"
	ReasonTimestampBypass = "timestamp_fallback"
	ReasonNonPositiveTime = "non_positive_elapsed"
	ReasonTooFast         = "implausible_speed"
	ReasonFallbackJump    = "timestamp_fallback_jump"
	ReasonBadCoordinate   = "invalid_coordinate"
)

// Segment is the movement implied between two chronologically adjacent
// samples. It only lives for one processing pass.
type Segment struct {
	From            types.LocationSample
	To              types.LocationSample
	DistanceM       float64
	ElapsedS        float64
	SpeedMps        float64
	TimestampsValid bool
	Accepted        bool
	Reason          string
}

// ValidateSegment decides whether the movement between a and b is plausible
// GPS signal. It never fails: malformed timestamps fall back to a coarser
// distance-only rule.
func ValidateSegment(a, b types.LocationSample, p SegmentParams) Segment {
	seg := Segment{
		From:      a,
		To:        b,
		DistanceM: geo.DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude),
	}

	if !a.Valid() || !b.Valid() {
		seg.Reason = ReasonBadCoordinate
		return seg
	}

	t1, err1 := a.Time()
	t2, err2 := b.Time()
	if err1 != nil || err2 != nil {
		seg.Accepted = seg.DistanceM < p.FallbackMaxDistanceM
		if seg.Accepted {
			seg.Reason = ReasonTimestampBypass
		} else {
			seg.Reason = ReasonFallbackJump
		}
		return seg
	}

	seg.TimestampsValid = true
	seg.ElapsedS = t2.Sub(t1).Seconds()
	if seg.ElapsedS <= 0 {
		seg.Reason = ReasonNonPositiveTime
		return seg
	}
	seg.SpeedMps = seg.DistanceM / seg.ElapsedS

	switch {
	case seg.ElapsedS >= p.MinElapsedS && seg.DistanceM < p.MaxWalkingDistanceM:
		seg.Accepted = true
		seg.Reason = ReasonContinuous
	case seg.SpeedMps <= p.MaxSpeedMps:
		seg.Accepted = true
		seg.Reason = ReasonBoundedSpeed
	default:
		seg.Reason = ReasonTooFast
	}

	return seg
}
