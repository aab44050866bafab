// Package route turns a raw sample stream into a privacy-clipped, bounded
// polyline that map clients can draw directly.
package route

import (
	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/types"
	"go.uber.org/zap"
)

// Params configures a Builder
type Params struct {
	PrivacyDistanceM float64
	Sampler          SamplerParams
}

// DefaultParams returns the production rendering policy
func DefaultParams() Params {
	return Params{
		PrivacyDistanceM: DefaultPrivacyDistanceM,
		Sampler:          DefaultSamplerParams(),
	}
}

// Stats summarises one build for logging and API responses
type Stats struct {
	RawPoints     int         `json:"raw_points"`
	ClippedPoints int         `json:"clipped_points"`
	Sampling      SampleStats `json:"sampling"`
}

// Builder produces render routes. It is stateless and safe for concurrent use.
type Builder struct {
	params  Params
	sampler *Sampler
	logger  *zap.SugaredLogger
}

// NewBuilder creates a builder. A nil logger uses the package logger.
func NewBuilder(params Params, logger *zap.SugaredLogger) *Builder {
	logger = log.OrDefault(logger)
	return &Builder{
		params:  params,
		sampler: NewSampler(params.Sampler, logger),
		logger:  logger,
	}
}

// BuildRenderRoute sorts, privacy-clips and samples a session using the
// default policy. The result is empty, never nil, when nothing may be shown.
func BuildRenderRoute(samples []types.LocationSample) types.RenderRoute {
	rendered, _ := NewBuilder(DefaultParams(), nil).Build(samples)
	return rendered
}

// Build runs the full rendering pipeline and reports what each stage did
func (b *Builder) Build(samples []types.LocationSample) (types.RenderRoute, Stats) {
	stats := Stats{RawPoints: len(samples)}

	sorted := types.SortSamples(samples)
	clipped := ClipPrivacy(sorted, b.params.PrivacyDistanceM)
	stats.ClippedPoints = len(clipped)

	if len(clipped) == 0 {
		b.logger.Debugw("route hidden by privacy clip", "raw_points", len(samples))
		return types.RenderRoute{}, stats
	}

	rendered, sampleStats := b.sampler.Sample(clipped)
	stats.Sampling = sampleStats

	b.logger.Debugw("render route built",
		"raw_points", stats.RawPoints,
		"clipped_points", stats.ClippedPoints,
		"distance_pass", sampleStats.DistancePass,
		"cap_pass", sampleStats.CapPass,
		"interpolated", sampleStats.Interpolated,
		"rendered_points", len(rendered),
	)

	return rendered, stats
}
