package config

import (
	"errors"
	"fmt"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetServerConfig() (*ServerData, error)
	GetStorageConfig() (*StorageData, error)
	GetPipelineConfig() (*PipelineData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server   ServerData   `json:"server"`
	Storage  StorageData  `json:"storage,omitempty"`
	Pipeline PipelineData `json:"pipeline,omitempty"`
}

// ServerData configures the HTTP API listener
type ServerData struct {
	ListenAddr       string `json:"listen_addr,omitempty"`
	Port             int    `json:"port,omitempty"`
	Cert             string `json:"cert,omitempty"`
	Key              string `json:"key,omitempty"`
	EnableGRPCHealth bool   `json:"enable_grpc_health,omitempty"`
}

// StorageData selects the session sample store. Exactly one backend may be set.
type StorageData struct {
	Postgres *PostgresData `json:"postgres,omitempty"`
	SQLite   *SQLiteData   `json:"sqlite,omitempty"`
	Audit    bool          `json:"audit,omitempty"`
}

type PostgresData struct {
	ConnectionString string `json:"connection_string"`
}

type SQLiteData struct {
	Path string `json:"path"`
}

// PipelineData holds the GPS processing thresholds. Zero values take defaults.
type PipelineData struct {
	PrivacyDistanceM     float64 `json:"privacy_distance_m,omitempty"`
	TargetSpacingM       float64 `json:"target_spacing_m,omitempty"`
	MaxPoints            int     `json:"max_points,omitempty"`
	MaxSegmentM          float64 `json:"max_segment_m,omitempty"`
	ElevationThresholdM  float64 `json:"elevation_threshold_m,omitempty"`
	MinElapsedS          float64 `json:"min_elapsed_s,omitempty"`
	MaxWalkingDistanceM  float64 `json:"max_walking_distance_m,omitempty"`
	MaxSpeedMps          float64 `json:"max_speed_mps,omitempty"`
	FallbackMaxDistanceM float64 `json:"fallback_max_distance_m,omitempty"`
}

// Defaults
const (
	DefaultListenAddr           = "0.0.0.0"
	DefaultPort                 = 8080
	DefaultPrivacyDistanceM     = 500.0
	DefaultTargetSpacingM       = 35.0
	DefaultMaxPoints            = 500
	DefaultMaxSegmentM          = 60.0
	DefaultElevationThresholdM  = 2.0
	DefaultMinElapsedS          = 1.0
	DefaultMaxWalkingDistanceM  = 100.0
	DefaultMaxSpeedMps          = 4.5
	DefaultFallbackMaxDistanceM = 200.0
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// ApplyDefaults fills in every unset field
func (c *ConfigData) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	p := &c.Pipeline
	setDefault(&p.PrivacyDistanceM, DefaultPrivacyDistanceM)
	setDefault(&p.TargetSpacingM, DefaultTargetSpacingM)
	setDefault(&p.MaxSegmentM, DefaultMaxSegmentM)
	setDefault(&p.ElevationThresholdM, DefaultElevationThresholdM)
	setDefault(&p.MinElapsedS, DefaultMinElapsedS)
	setDefault(&p.MaxWalkingDistanceM, DefaultMaxWalkingDistanceM)
	setDefault(&p.MaxSpeedMps, DefaultMaxSpeedMps)
	setDefault(&p.FallbackMaxDistanceM, DefaultFallbackMaxDistanceM)
	if p.MaxPoints == 0 {
		p.MaxPoints = DefaultMaxPoints
	}
}

// Validate checks the configuration after defaults have been applied
func (c *ConfigData) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if (c.Server.Cert == "") != (c.Server.Key == "") {
		return fmt.Errorf("%w: server cert and key must be set together", ErrInvalidConfig)
	}

	if c.Storage.Postgres != nil && c.Storage.SQLite != nil {
		return fmt.Errorf("%w: only one of storage.postgres and storage.sqlite may be set", ErrInvalidConfig)
	}
	if c.Storage.Postgres != nil && c.Storage.Postgres.ConnectionString == "" {
		return fmt.Errorf("%w: storage.postgres.connection_string is required", ErrInvalidConfig)
	}
	if c.Storage.SQLite != nil && c.Storage.SQLite.Path == "" {
		return fmt.Errorf("%w: storage.sqlite.path is required", ErrInvalidConfig)
	}

	p := c.Pipeline
	for name, v := range map[string]float64{
		"privacy_distance_m":      p.PrivacyDistanceM,
		"target_spacing_m":        p.TargetSpacingM,
		"max_segment_m":           p.MaxSegmentM,
		"elevation_threshold_m":   p.ElevationThresholdM,
		"min_elapsed_s":           p.MinElapsedS,
		"max_walking_distance_m":  p.MaxWalkingDistanceM,
		"max_speed_mps":           p.MaxSpeedMps,
		"fallback_max_distance_m": p.FallbackMaxDistanceM,
	} {
		if v < 0 {
			return fmt.Errorf("%w: pipeline.%s must not be negative", ErrInvalidConfig, name)
		}
	}
	if p.MaxPoints < 2 {
		return fmt.Errorf("%w: pipeline.max_points must be at least 2", ErrInvalidConfig)
	}

	return nil
}

func setDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}
