package app

import (
	"path/filepath"
	"testing"

	"github.com/chrissnell/trackreconcile/internal/metrics"
	"github.com/chrissnell/trackreconcile/internal/route"
	"github.com/chrissnell/trackreconcile/internal/store"
	"github.com/chrissnell/trackreconcile/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultPipelineMatchesPackageDefaults(t *testing.T) {
	cfg := &config.ConfigData{}
	cfg.ApplyDefaults()

	assert.Equal(t, metrics.DefaultParams(), MetricsParams(cfg.Pipeline))
	assert.Equal(t, route.DefaultParams(), RouteParams(cfg.Pipeline))
}

func TestPipelineOverrides(t *testing.T) {
	cfg := &config.ConfigData{Pipeline: config.PipelineData{
		PrivacyDistanceM: 800,
		MaxPoints:        250,
		MaxSpeedMps:      6,
	}}
	cfg.ApplyDefaults()

	rp := RouteParams(cfg.Pipeline)
	assert.Equal(t, 800.0, rp.PrivacyDistanceM)
	assert.Equal(t, 250, rp.Sampler.MaxPoints)

	mp := MetricsParams(cfg.Pipeline)
	assert.Equal(t, 6.0, mp.Segment.MaxSpeedMps)
	assert.Equal(t, config.DefaultFallbackMaxDistanceM, mp.Segment.FallbackMaxDistanceM)
}

func TestOpenStore(t *testing.T) {
	logger := zap.NewNop().Sugar()

	s, err := OpenStore(config.StorageData{}, logger)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = OpenStore(config.StorageData{
		SQLite: &config.SQLiteData{Path: filepath.Join(t.TempDir(), "samples.db")},
	}, logger)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &store.SQLiteStore{}, s)
}
