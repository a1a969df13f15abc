// Package config provides configuration loading and management for ncexport.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ncexport/pkg/nrrd"
)

// DefaultPath is the configuration file read when none is given
const DefaultPath = "ncexport.yaml"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Export parameters
	Export struct {
		// PointCloudVariable is the variable exported by gltf and nrrd when
		// none is given on the command line
		PointCloudVariable string `yaml:"pointCloudVariable"`

		// RadianceVariable is the variable rendered by rad
		RadianceVariable string `yaml:"radianceVariable"`

		// NadirIndex is the view-angle index of the radiance image
		NadirIndex int `yaml:"nadirIndex"`

		// NRRDEncoding is raw or gzip
		NRRDEncoding string `yaml:"nrrdEncoding"`

		// Clamp limits values to the quantization range before encoding
		Clamp bool `yaml:"clamp"`

		// HistogramBins is the number of bins in value histograms
		HistogramBins int `yaml:"histogramBins"`
	} `yaml:"export"`

	// Output parameters
	Output struct {
		// Verbose prints a value summary of every exported variable
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Export.PointCloudVariable = "QC"
	cfg.Export.RadianceVariable = "rad"
	cfg.Export.NadirIndex = 8
	cfg.Export.NRRDEncoding = string(nrrd.Gzip)
	cfg.Export.Clamp = false
	cfg.Export.HistogramBins = 50

	cfg.Output.Verbose = true

	return cfg
}

// Validate checks that the configured values are usable
func (c *Config) Validate() error {
	if c.Export.PointCloudVariable == "" || c.Export.RadianceVariable == "" {
		return fmt.Errorf("variable names must not be empty")
	}
	if c.Export.NadirIndex < 0 {
		return fmt.Errorf("nadir index must be non-negative, got %d", c.Export.NadirIndex)
	}
	if _, err := nrrd.ParseEncoding(c.Export.NRRDEncoding); err != nil {
		return err
	}
	if c.Export.HistogramBins <= 0 {
		return fmt.Errorf("histogram bins must be positive, got %d", c.Export.HistogramBins)
	}
	return nil
}

// Encoding returns the configured NRRD encoding
func (c *Config) Encoding() nrrd.Encoding {
	enc, err := nrrd.ParseEncoding(c.Export.NRRDEncoding)
	if err != nil {
		return nrrd.Gzip
	}
	return enc
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
