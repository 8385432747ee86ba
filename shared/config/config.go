package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Waves      WavesConfig      `yaml:"waves"`
	Output     OutputConfig     `yaml:"output"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

type TelemetryConfig struct {
	ServerIP       string `yaml:"server_ip" env:"TAF_IP"`
	Table          string `yaml:"table"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type WavesConfig struct {
	WindowSec    float64 `yaml:"window_sec"`
	SampleRateHz float64 `yaml:"sample_rate_hz"`
	BoatID       string  `yaml:"boat_id"`
	// TodayOnly is a pointer so an explicit false in YAML survives defaulting.
	TodayOnly *bool  `yaml:"today_only"`
	Timezone  string `yaml:"timezone"`
}

type OutputConfig struct {
	Path      string `yaml:"path"`
	ViewPath  string `yaml:"view_path"`
	ViewStart string `yaml:"view_start"`
	ViewEnd   string `yaml:"view_end"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && os.Getenv("TAF_IP") != "":
		// Environment-only setup, the way the collector was first deployed
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if cfg.Telemetry.ServerIP == "" {
		cfg.Telemetry.ServerIP = os.Getenv("TAF_IP")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Telemetry.Table == "" {
		c.Telemetry.Table = "boat_data"
	}
	if c.Telemetry.TimeoutSeconds == 0 {
		c.Telemetry.TimeoutSeconds = 30
	}
	if c.Waves.WindowSec == 0 {
		c.Waves.WindowSec = 5
	}
	if c.Waves.SampleRateHz == 0 {
		c.Waves.SampleRateHz = 10
	}
	if c.Waves.TodayOnly == nil {
		todayOnly := true
		c.Waves.TodayOnly = &todayOnly
	}
	if c.Waves.Timezone == "" {
		c.Waves.Timezone = "Local"
	}
	if c.Output.Path == "" {
		c.Output.Path = "public/waves.csv"
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 */5 * * * *" // Every 5 minutes
	}
}

func (c *Config) validate() error {
	if c.Telemetry.ServerIP == "" {
		return fmt.Errorf("telemetry server address is required (set TAF_IP or telemetry.server_ip)")
	}
	if c.Telemetry.TimeoutSeconds < 0 {
		return fmt.Errorf("telemetry.timeout_seconds must not be negative, got %d", c.Telemetry.TimeoutSeconds)
	}
	if c.Waves.WindowSec <= 0 {
		return fmt.Errorf("waves.window_sec must be positive, got %g", c.Waves.WindowSec)
	}
	if c.Waves.SampleRateHz <= 0 {
		return fmt.Errorf("waves.sample_rate_hz must be positive, got %g", c.Waves.SampleRateHz)
	}
	if _, err := time.LoadLocation(c.Waves.Timezone); err != nil {
		return fmt.Errorf("invalid waves.timezone %q: %w", c.Waves.Timezone, err)
	}
	if c.Output.ViewPath == "" && (c.Output.ViewStart != "" || c.Output.ViewEnd != "") {
		return fmt.Errorf("output.view_start and output.view_end require output.view_path")
	}
	if c.Output.ViewPath != "" && c.Output.ViewPath == c.Output.Path {
		return fmt.Errorf("output.view_path must differ from output.path")
	}
	return nil
}

// IsTodayOnly reports whether samples from before local midnight are dropped.
func (w WavesConfig) IsTodayOnly() bool {
	return w.TodayOnly == nil || *w.TodayOnly
}

// Location resolves the configured timezone, falling back to time.Local.
func (w WavesConfig) Location() *time.Location {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil || w.Timezone == "" {
		return time.Local
	}
	return loc
}
