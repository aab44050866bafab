package types

// ClientReportedMetrics holds the end-of-session values submitted by the
// originating device. Optional fields are nil when the client omitted them.
type ClientReportedMetrics struct {
	DistanceKm          float64  `json:"distance_km"`
	ElevationGainM      *float64 `json:"elevation_gain_m,omitempty"`
	ElevationLossM      *float64 `json:"elevation_loss_m,omitempty"`
	AveragePaceSecPerKm *float64 `json:"average_pace,omitempty"`
	Calories            *float64 `json:"calories_burned,omitempty"`
}

// Metric sources recorded on CanonicalMetrics
const (
	SourceClient     = "client"
	SourceReconciled = "reconciled"
)

// CanonicalMetrics are the metrics of record for a completed session.
type CanonicalMetrics struct {
	DistanceKm          float64  `json:"distance_km"`
	ElevationGainM      float64  `json:"elevation_gain_m"`
	ElevationLossM      float64  `json:"elevation_loss_m"`
	AveragePaceSecPerKm *float64 `json:"average_pace,omitempty"`
	Calories            *float64 `json:"calories_burned,omitempty"`
	Source              string   `json:"source"`
}

// FromClient builds canonical metrics that mirror the client payload.
func FromClient(c ClientReportedMetrics) CanonicalMetrics {
	m := CanonicalMetrics{
		DistanceKm: c.DistanceKm,
		Source:     SourceClient,
	}
	if c.ElevationGainM != nil {
		m.ElevationGainM = *c.ElevationGainM
	}
	if c.ElevationLossM != nil {
		m.ElevationLossM = *c.ElevationLossM
	}
	if c.AveragePaceSecPerKm != nil {
		m.AveragePaceSecPerKm = Float64(*c.AveragePaceSecPerKm)
	}
	if c.Calories != nil {
		m.Calories = Float64(*c.Calories)
	}
	return m
}
