package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig reads the YAML file, applies defaults and validates the result
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// ParseYAML decodes a YAML document into a defaulted, validated ConfigData
func ParseYAML(data []byte) (*ConfigData, error) {
	var yamlConfig ConfigYAML
	if err := yaml.UnmarshalStrict(data, &yamlConfig); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Server: ServerData{
			ListenAddr:       yamlConfig.Server.ListenAddr,
			Port:             yamlConfig.Server.Port,
			Cert:             yamlConfig.Server.Cert,
			Key:              yamlConfig.Server.Key,
			EnableGRPCHealth: yamlConfig.Server.EnableGRPCHealth,
		},
		Storage: StorageData{
			Audit: yamlConfig.Storage.Audit,
		},
		Pipeline: PipelineData{
			PrivacyDistanceM:     yamlConfig.Pipeline.PrivacyDistanceM,
			TargetSpacingM:       yamlConfig.Pipeline.TargetSpacingM,
			MaxPoints:            yamlConfig.Pipeline.MaxPoints,
			MaxSegmentM:          yamlConfig.Pipeline.MaxSegmentM,
			ElevationThresholdM:  yamlConfig.Pipeline.ElevationThresholdM,
			MinElapsedS:          yamlConfig.Pipeline.MinElapsedS,
			MaxWalkingDistanceM:  yamlConfig.Pipeline.MaxWalkingDistanceM,
			MaxSpeedMps:          yamlConfig.Pipeline.MaxSpeedMps,
			FallbackMaxDistanceM: yamlConfig.Pipeline.FallbackMaxDistanceM,
		},
	}

	if yamlConfig.Storage.Postgres != nil {
		config.Storage.Postgres = &PostgresData{
			ConnectionString: yamlConfig.Storage.Postgres.ConnectionString,
		}
	}
	if yamlConfig.Storage.SQLite != nil {
		config.Storage.SQLite = &SQLiteData{
			Path: yamlConfig.Storage.SQLite.Path,
		}
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// GetServerConfig returns the API server configuration
func (y *YAMLProvider) GetServerConfig() (*ServerData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.Server, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.Storage, nil
}

// GetPipelineConfig returns the GPS processing thresholds
func (y *YAMLProvider) GetPipelineConfig() (*PipelineData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.Pipeline, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

func (y *YAMLProvider) ensureLoaded() error {
	if y.config != nil {
		return nil
	}
	_, err := y.LoadConfig()
	return err
}

// YAML-specific structs with YAML tags
type ConfigYAML struct {
	Server   ServerYAML   `yaml:"server"`
	Storage  StorageYAML  `yaml:"storage,omitempty"`
	Pipeline PipelineYAML `yaml:"pipeline,omitempty"`
}

type ServerYAML struct {
	ListenAddr       string `yaml:"listen_addr,omitempty"`
	Port             int    `yaml:"port,omitempty"`
	Cert             string `yaml:"cert,omitempty"`
	Key              string `yaml:"key,omitempty"`
	EnableGRPCHealth bool   `yaml:"enable_grpc_health,omitempty"`
}

type StorageYAML struct {
	Postgres *PostgresYAML `yaml:"postgres,omitempty"`
	SQLite   *SQLiteYAML   `yaml:"sqlite,omitempty"`
	Audit    bool          `yaml:"audit,omitempty"`
}

type PostgresYAML struct {
	ConnectionString string `yaml:"connection_string"`
}

type SQLiteYAML struct {
	Path string `yaml:"path"`
}

type PipelineYAML struct {
	PrivacyDistanceM     float64 `yaml:"privacy_distance_m,omitempty"`
	TargetSpacingM       float64 `yaml:"target_spacing_m,omitempty"`
	MaxPoints            int     `yaml:"max_points,omitempty"`
	MaxSegmentM          float64 `yaml:"max_segment_m,omitempty"`
	ElevationThresholdM  float64 `yaml:"elevation_threshold_m,omitempty"`
	MinElapsedS          float64 `yaml:"min_elapsed_s,omitempty"`
	MaxWalkingDistanceM  float64 `yaml:"max_walking_distance_m,omitempty"`
	MaxSpeedMps          float64 `yaml:"max_speed_mps,omitempty"`
	FallbackMaxDistanceM float64 `yaml:"fallback_max_distance_m,omitempty"`
}
