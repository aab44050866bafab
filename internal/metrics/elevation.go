package metrics

// DefaultElevationThresholdM is the dead band applied to altitude deltas
const DefaultElevationThresholdM = 2.0

// ElevationAccumulator integrates altitude changes over accepted segments.
// Deltas inside the dead band are treated as sensor noise.
type ElevationAccumulator struct {
	Threshold float64

	gain float64
	loss float64
}

// NewElevationAccumulator returns an accumulator with the given dead band
func NewElevationAccumulator(threshold float64) *ElevationAccumulator {
	return &ElevationAccumulator{Threshold: threshold}
}

// Add feeds one segment. Rejected segments and segments missing either
// altitude never contribute.
func (e *ElevationAccumulator) Add(seg Segment) {
	if !seg.Accepted || seg.From.Altitude == nil || seg.To.Altitude == nil {
		return
	}

	delta := *seg.To.Altitude - *seg.From.Altitude
	switch {
	case delta > e.Threshold:
		e.gain += delta
	case delta < -e.Threshold:
		e.loss += -delta
	}
}

// GainM returns the accumulated elevation gain in meters
func (e *ElevationAccumulator) GainM() float64 {
	return e.gain
}

// LossM returns the accumulated elevation loss in meters
func (e *ElevationAccumulator) LossM() float64 {
	return e.loss
}
