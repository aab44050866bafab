// Package metrics turns a raw GPS sample stream into the canonical distance,
// elevation, pace and calorie figures for a completed session, reconciling the
// server's recomputation against what the client reported.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/types"
	"go.uber.org/zap"
)

// ErrInvalidArgument is returned for caller programming errors such as a
// negative duration. GPS quality problems never produce an error.
var ErrInvalidArgument = errors.New("invalid argument")

// Params groups every tunable used by the reconciler
type Params struct {
	Segment             SegmentParams
	ElevationThresholdM float64
	Calories            CalorieParams
}

// DefaultParams returns the production thresholds
func DefaultParams() Params {
	return Params{
		Segment:             DefaultSegmentParams(),
		ElevationThresholdM: DefaultElevationThresholdM,
		Calories:            DefaultCalorieParams(),
	}
}

// Input is everything the reconciler needs for one completed session
type Input struct {
	Samples         []types.LocationSample
	Client          types.ClientReportedMetrics
	DurationSeconds int64
	WeightKg        float64
	RuckWeightKg    float64
}

// Decision records which value won for one reconciled field
type Decision struct {
	Field  string   `json:"field"`
	Server *float64 `json:"server,omitempty"`
	Client *float64 `json:"client,omitempty"`
	Chosen string   `json:"chosen"`
	Reason string   `json:"reason"`
}

// Report is the full outcome of a reconciliation
type Report struct {
	Metrics   types.CanonicalMetrics `json:"metrics"`
	Decisions []Decision             `json:"decisions"`
	Segments  SegmentStats           `json:"segments"`
}

// Reconciler produces canonical metrics. It holds no per-session state and is
// safe for concurrent use.
type Reconciler struct {
	params Params
	logger *zap.SugaredLogger
}

// NewReconciler creates a reconciler. A nil logger uses the package logger.
func NewReconciler(params Params, logger *zap.SugaredLogger) *Reconciler {
	return &Reconciler{
		params: params,
		logger: log.OrDefault(logger),
	}
}

// ReconcileCanonicalMetrics is the session-completion entry point using the
// default parameters.
func ReconcileCanonicalMetrics(samples []types.LocationSample, client types.ClientReportedMetrics, durationSeconds int64, weightKg, ruckWeightKg float64) (types.CanonicalMetrics, error) {
	report, err := NewReconciler(DefaultParams(), nil).Reconcile(Input{
		Samples:         samples,
		Client:          client,
		DurationSeconds: durationSeconds,
		WeightKg:        weightKg,
		RuckWeightKg:    ruckWeightKg,
	})
	if err != nil {
		return types.CanonicalMetrics{}, err
	}
	return report.Metrics, nil
}

// Validate rejects arguments that indicate a programming error in the caller
func (in Input) Validate() error {
	if in.DurationSeconds < 0 {
		return fmt.Errorf("%w: negative duration %d", ErrInvalidArgument, in.DurationSeconds)
	}
	if in.WeightKg < 0 || math.IsNaN(in.WeightKg) || math.IsInf(in.WeightKg, 0) {
		return fmt.Errorf("%w: weight_kg %v", ErrInvalidArgument, in.WeightKg)
	}
	if in.RuckWeightKg < 0 || math.IsNaN(in.RuckWeightKg) || math.IsInf(in.RuckWeightKg, 0) {
		return fmt.Errorf("%w: ruck_weight_kg %v", ErrInvalidArgument, in.RuckWeightKg)
	}
	if in.Client.DistanceKm < 0 || math.IsNaN(in.Client.DistanceKm) || math.IsInf(in.Client.DistanceKm, 0) {
		return fmt.Errorf("%w: client distance_km %v", ErrInvalidArgument, in.Client.DistanceKm)
	}
	return nil
}

// Reconcile recomputes distance and elevation from the samples and merges them
// with the client-reported values. Every branch has a defined fallback; the
// only error is an invalid argument.
func (r *Reconciler) Reconcile(in Input) (Report, error) {
	if err := in.Validate(); err != nil {
		return Report{}, err
	}

	if len(in.Samples) < 2 {
		r.logger.Infow("too few samples for recomputation, keeping client metrics",
			"samples", len(in.Samples), "client_distance_km", in.Client.DistanceKm)
		return Report{
			Metrics: types.FromClient(in.Client),
			Decisions: []Decision{{
				Field:  "all",
				Chosen: types.SourceClient,
				Reason: "fewer than 2 samples",
			}},
		}, nil
	}

	serverKm, gainM, lossM, stats := r.recompute(in.Samples)

	var report Report
	report.Segments = stats
	m := &report.Metrics
	m.Source = types.SourceReconciled

	m.DistanceKm = r.reconcileDistance(&report, serverKm, in.Client.DistanceKm)
	m.ElevationGainM = r.reconcileElevation(&report, "elevation_gain_m", gainM, in.Client.ElevationGainM)
	m.ElevationLossM = r.reconcileElevation(&report, "elevation_loss_m", lossM, in.Client.ElevationLossM)

	if m.DistanceKm > 0 && in.DurationSeconds > 0 {
		m.AveragePaceSecPerKm = types.Float64(float64(in.DurationSeconds) / m.DistanceKm)
	} else {
		r.logger.Debugw("pace left unset", "distance_km", m.DistanceKm, "duration_s", in.DurationSeconds)
	}

	m.Calories = r.reconcileCalories(&report, in, m.ElevationGainM)

	return report, nil
}

// recompute sorts the samples and runs the validator over every adjacent pair
func (r *Reconciler) recompute(samples []types.LocationSample) (float64, float64, float64, SegmentStats) {
	sorted := types.SortSamples(samples)
	elevation := NewElevationAccumulator(r.params.ElevationThresholdM)
	var collector statsCollector

	totalM := 0.0
	for i := 1; i < len(sorted); i++ {
		seg := ValidateSegment(sorted[i-1], sorted[i], r.params.Segment)
		collector.add(seg)

		if !seg.Accepted {
			r.logger.Debugw("segment rejected",
				"index", i,
				"reason", seg.Reason,
				"distance_m", seg.DistanceM,
				"elapsed_s", seg.ElapsedS,
				"speed_mps", seg.SpeedMps)
			continue
		}

		totalM += seg.DistanceM
		elevation.Add(seg)
	}

	stats := collector.result()
	r.logger.Debugw("segment validation complete",
		"segments", stats.Total,
		"accepted", stats.Accepted,
		"rejected", stats.Rejected,
		"distance_m", totalM)

	return totalM / 1000.0, elevation.GainM(), elevation.LossM(), stats
}

// reconcileDistance trusts the server only when it did not under-measure
func (r *Reconciler) reconcileDistance(report *Report, serverKm, clientKm float64) float64 {
	d := Decision{
		Field:  "distance_km",
		Server: types.Float64(serverKm),
		Client: types.Float64(clientKm),
	}

	var chosen float64
	switch {
	case clientKm == 0:
		d.Chosen, d.Reason, chosen = "server", "client reported no distance", serverKm
	case serverKm >= clientKm:
		d.Chosen, d.Reason, chosen = "server", "server distance not less than client", serverKm
	default:
		d.Chosen, d.Reason, chosen = "client", "server under-measured, preserving client distance", clientKm
	}

	r.logDecision(d)
	report.Decisions = append(report.Decisions, d)
	return chosen
}

// reconcileElevation prefers any positive client value
func (r *Reconciler) reconcileElevation(report *Report, field string, server float64, client *float64) float64 {
	d := Decision{
		Field:  field,
		Server: types.Float64(server),
		Client: client,
	}

	chosen := server
	if client != nil && *client > 0 {
		d.Chosen, d.Reason, chosen = "client", "client value present", *client
	} else {
		d.Chosen, d.Reason = "server", "client value zero or absent"
	}

	r.logDecision(d)
	report.Decisions = append(report.Decisions, d)
	return chosen
}

// reconcileCalories only estimates when the client supplied nothing usable
func (r *Reconciler) reconcileCalories(report *Report, in Input, gainM float64) *float64 {
	d := Decision{
		Field:  "calories_burned",
		Client: in.Client.Calories,
	}

	if in.Client.Calories != nil && *in.Client.Calories > 0 {
		d.Chosen, d.Reason = "client", "client value present"
		r.logDecision(d)
		report.Decisions = append(report.Decisions, d)
		return types.Float64(*in.Client.Calories)
	}

	if in.WeightKg+in.RuckWeightKg <= 0 {
		d.Chosen, d.Reason = "none", "no body or load weight supplied"
		r.logDecision(d)
		report.Decisions = append(report.Decisions, d)
		return nil
	}

	kcal := EstimateCalories(in.WeightKg, in.RuckWeightKg, in.DurationSeconds, gainM, r.params.Calories)
	d.Server = types.Float64(kcal)
	d.Chosen, d.Reason = "server", "client value zero or absent"
	r.logDecision(d)
	report.Decisions = append(report.Decisions, d)
	return types.Float64(kcal)
}

func (r *Reconciler) logDecision(d Decision) {
	r.logger.Infow("reconciliation decision",
		"field", d.Field,
		"server", deref(d.Server),
		"client", deref(d.Client),
		"chosen", d.Chosen,
		"reason", d.Reason)
}

func deref(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
