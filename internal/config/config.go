// Package config is the YAML configuration surface of the bridge.
// Load parses, Validate checks without mutating, Normalize fills
// defaults and must run only after Validate.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Target       TargetConfig       `yaml:"target"`
	Poll         PollConfig         `yaml:"poll"`
	Availability AvailabilityConfig `yaml:"availability"`
	Derived      DerivedConfig      `yaml:"derived"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Log          LogConfig          `yaml:"log"`
}

// ---- TARGET ----

type TargetConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`       // default 502
	UnitID    int    `yaml:"unit_id"`    // Modbus device address, 1-247
	TimeoutMs int    `yaml:"timeout_ms"` // per-request deadline
}

// Endpoint renders host:port for dialing.
func (t TargetConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// ---- POLL ----

type PollConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"` // 10-300
	GapThreshold    int `yaml:"gap_threshold"`    // registers merged across
	MaxBlockSize    int `yaml:"max_block_size"`   // <= 125
	WriteQueueSize  int `yaml:"write_queue_size"`
}

// ---- AVAILABILITY ----

type AvailabilityConfig struct {
	// FailureThreshold is how many consecutive block failures mark an
	// entity unavailable.
	FailureThreshold int `yaml:"failure_threshold"`
}

// ---- DERIVED ----

type DerivedConfig struct {
	// NominalFlowLPS is the installer-measured circulation flow in
	// litres/second. Zero disables the heat-output metrics.
	NominalFlowLPS float64 `yaml:"nominal_flow_lps"`

	// TariffPerKWh prices the daily energy projection. Zero disables
	// the cost metric.
	TariffPerKWh float64 `yaml:"tariff_per_kwh"`
}

// ---- MQTT (optional) ----

type MQTTConfig struct {
	Broker          string `yaml:"broker"` // empty disables MQTT
	ClientID        string `yaml:"client_id"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	TopicPrefix     string `yaml:"topic_prefix"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	DeviceName      string `yaml:"device_name"`
}

// ---- TELEMETRY (optional) ----

type TelemetryConfig struct {
	Addr string `yaml:"addr"` // empty disables the HTTP server
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|text
}

// Load reads and parses the config file. Unknown keys are errors so
// typos never pass silently.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
