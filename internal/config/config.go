// Package config loads the msf-receiver YAML configuration file.
// All fields have sensible defaults, so a missing or partial file works.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/msf-receiver/internal/gpio"
	"github.com/sweeney/msf-receiver/internal/msf"
)

// Config is the daemon configuration.
type Config struct {
	Broker           string `yaml:"broker"`
	ClientID         string `yaml:"client_id"`
	GPIOChip         string `yaml:"gpio_chip"`
	GPIOPin          int    `yaml:"gpio_pin"`
	GPIOInvert       bool   `yaml:"gpio_invert"`
	HTTPAddr         string `yaml:"http_addr"`
	HeartbeatMinutes int    `yaml:"heartbeat_minutes"`
	Strict           bool   `yaml:"strict"`
	SpikeLimitMicros uint32 `yaml:"spike_limit_us"`
	// MarkerConvention selects how wide an end-of-second gap still counts
	// as a minute marker. "default" is the usual receiver module behavior,
	// "wide" tolerates modules that merge the marker with the following
	// passive period.
	MarkerConvention string `yaml:"marker_convention"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Broker:           "tcp://localhost:1883",
		GPIOChip:         gpio.DefaultChip,
		GPIOPin:          gpio.DefaultPin,
		HTTPAddr:         ":8080",
		HeartbeatMinutes: 15,
		MarkerConvention: "default",
	}
}

// Load reads the YAML file at path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field values that would break the daemon at runtime.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker must not be empty")
	}
	if c.GPIOPin < 0 {
		return fmt.Errorf("gpio_pin must not be negative")
	}
	if c.HeartbeatMinutes < 0 {
		return fmt.Errorf("heartbeat_minutes must not be negative")
	}
	switch c.MarkerConvention {
	case "", "default", "wide":
	default:
		return fmt.Errorf("unknown marker_convention %q", c.MarkerConvention)
	}
	if c.SpikeLimitMicros >= msf.DefaultConfig().Active0Limit {
		return fmt.Errorf("spike_limit_us %d too large", c.SpikeLimitMicros)
	}
	return nil
}

// DecoderConfig returns the edge classification limits for the configured
// marker convention.
func (c Config) DecoderConfig() msf.Config {
	if c.MarkerConvention == "wide" {
		return msf.WideMarkerConfig()
	}
	return msf.DefaultConfig()
}
