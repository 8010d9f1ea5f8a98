package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Ratios holds the train/val/test split proportions. They need not sum
// exactly to 1; the test partition absorbs any rounding residue.
type Ratios struct {
	Train float64 `yaml:"train"`
	Val   float64 `yaml:"val"`
	Test  float64 `yaml:"test"`
}

// ParseConfig configures the pcap-to-session parse stage.
type ParseConfig struct {
	PCAPRoot  string `yaml:"pcap_root"`
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"`
}

// BuildConfig configures the dataset build stage.
type BuildConfig struct {
	ParsedDir  string  `yaml:"parsed_dir"`
	OutputDir  string  `yaml:"output_dir"`
	Format     string  `yaml:"format"`
	MaxPackets int     `yaml:"max_packets"`
	MinPackets int     `yaml:"min_packets"`
	IncludeIAT bool    `yaml:"include_iat"`
	SizeScale  float64 `yaml:"size_scale"` // <= 0 means self-normalize per session
	TimeScale  float64 `yaml:"time_scale"` // <= 0 means self-normalize per session
	Balance    bool    `yaml:"balance"`
	Seed       int64   `yaml:"seed"`
	Ratios     Ratios  `yaml:"ratios"`
	NumWorkers int     `yaml:"num_workers"`
}

// ClickHouseConfig holds the connection settings for the ClickHouse sink.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the connection settings for the NATS event publisher.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// SinksConfig groups the optional build-result destinations.
type SinksConfig struct {
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// Config is the top-level configuration struct for the entire pipeline.
type Config struct {
	Parse ParseConfig `yaml:"parse"`
	Build BuildConfig `yaml:"build"`
	Sinks SinksConfig `yaml:"sinks"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Parse: ParseConfig{
			PCAPRoot:  "data",
			OutputDir: "parsed",
			Format:    "csv",
		},
		Build: BuildConfig{
			ParsedDir:  "parsed",
			OutputDir:  "dataset",
			Format:     "csv",
			MaxPackets: 2000,
			MinPackets: 10,
			IncludeIAT: true,
			Balance:    true,
			Seed:       42,
			Ratios:     Ratios{Train: 0.70, Val: 0.15, Test: 0.15},
			NumWorkers: 4,
		},
		Sinks: SinksConfig{
			ClickHouse: ClickHouseConfig{
				Host:     "localhost",
				Port:     9000,
				Database: "default",
				Username: "default",
			},
			NATS: NATSConfig{
				URL:     "nats://localhost:4222",
				Subject: "wfguard.builds",
			},
		},
	}
}

// Load reads the configuration from a YAML file, applied on top of the
// defaults, and validates the result.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	b := c.Build
	if b.MaxPackets < 0 {
		return fmt.Errorf("build.max_packets must be >= 0, got %d", b.MaxPackets)
	}
	if b.MinPackets < 0 {
		return fmt.Errorf("build.min_packets must be >= 0, got %d", b.MinPackets)
	}
	if b.Ratios.Train < 0 || b.Ratios.Val < 0 || b.Ratios.Test < 0 {
		return fmt.Errorf("build.ratios must be non-negative, got %+v", b.Ratios)
	}
	if b.Ratios.Train+b.Ratios.Val > 1 {
		return fmt.Errorf("build.ratios train+val must not exceed 1, got %+v", b.Ratios)
	}
	if b.NumWorkers < 1 {
		return fmt.Errorf("build.num_workers must be >= 1, got %d", b.NumWorkers)
	}
	return nil
}
