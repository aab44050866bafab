package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SegmentStats summarizes one validation pass over a session
type SegmentStats struct {
	Total             int     `json:"total"`
	Accepted          int     `json:"accepted"`
	Rejected          int     `json:"rejected"`
	FallbackAccepted  int     `json:"fallback_accepted"`
	AcceptedDistanceM float64 `json:"accepted_distance_m"`
	RejectedDistanceM float64 `json:"rejected_distance_m"`
	MedianSpeedMps    float64 `json:"median_speed_mps"`
	P95SpeedMps       float64 `json:"p95_speed_mps"`
}

// AcceptanceRatio is the share of segments that contributed to totals
func (s SegmentStats) AcceptanceRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Total)
}

type statsCollector struct {
	stats  SegmentStats
	speeds []float64
}

func (c *statsCollector) add(seg Segment) {
	c.stats.Total++
	if !seg.Accepted {
		c.stats.Rejected++
		// NaN distances come from invalid coordinates and would poison the sum
		if !math.IsNaN(seg.DistanceM) {
			c.stats.RejectedDistanceM += seg.DistanceM
		}
		return
	}

	c.stats.Accepted++
	c.stats.AcceptedDistanceM += seg.DistanceM
	if seg.Reason == ReasonTimestampBypass {
		c.stats.FallbackAccepted++
	}
	if seg.TimestampsValid {
		c.speeds = append(c.speeds, seg.SpeedMps)
	}
}

func (c *statsCollector) result() SegmentStats {
	s := c.stats
	if len(c.speeds) > 0 {
		sort.Float64s(c.speeds)
		s.MedianSpeedMps = stat.Quantile(0.5, stat.Empirical, c.speeds, nil)
		s.P95SpeedMps = stat.Quantile(0.95, stat.Empirical, c.speeds, nil)
	}
	return s
}
