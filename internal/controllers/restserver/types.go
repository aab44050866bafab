package restserver

import (
	"github.com/chrissnell/trackreconcile/internal/metrics"
	"github.com/chrissnell/trackreconcile/internal/route"
	"github.com/chrissnell/trackreconcile/internal/types"
)

// ReconcileRequest is the body of POST /sessions/{id}/reconcile
type ReconcileRequest struct {
	ClientMetrics   types.ClientReportedMetrics `json:"client_metrics"`
	DurationSeconds int64                       `json:"duration_seconds"`
	WeightKg        float64                     `json:"weight_kg"`
	RuckWeightKg    float64                     `json:"ruck_weight_kg"`
}

// InlineReconcileRequest carries the samples in the body instead of reading the store
type InlineReconcileRequest struct {
	ReconcileRequest
	Samples []types.LocationSample `json:"samples"`
}

// InlineRouteRequest is the body of POST /route
type InlineRouteRequest struct {
	Samples []types.LocationSample `json:"samples"`
}

// ReconcileResponse wraps a reconciliation report
type ReconcileResponse struct {
	SessionID string `json:"session_id,omitempty"`
	metrics.Report
}

// RouteResponse is a rendered route plus what the pipeline did to produce it
type RouteResponse struct {
	SessionID string            `json:"session_id,omitempty"`
	Points    types.RenderRoute `json:"points"`
	Stats     route.Stats       `json:"stats"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Version string `json:"version"`
}

func (r ReconcileRequest) input(samples []types.LocationSample) metrics.Input {
	return metrics.Input{
		Samples:         samples,
		Client:          r.ClientMetrics,
		DurationSeconds: r.DurationSeconds,
		WeightKg:        r.WeightKg,
		RuckWeightKg:    r.RuckWeightKg,
	}
}
