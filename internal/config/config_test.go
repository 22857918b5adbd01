package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
target:
  host: 192.168.1.50
  port: 1502
  unit_id: 2
  timeout_ms: 2000
poll:
  interval_seconds: 60
  gap_threshold: 4
  max_block_size: 100
  write_queue_size: 8
availability:
  failure_threshold: 5
derived:
  nominal_flow_lps: 0.3
  tariff_per_kwh: 0.28
mqtt:
  broker: tcp://127.0.0.1:1883
  topic_prefix: heatpump
telemetry:
  addr: :9090
log:
  level: debug
  format: text
`))
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.50:1502", cfg.Target.Endpoint())
	assert.Equal(t, 2, cfg.Target.UnitID)
	assert.Equal(t, 60, cfg.Poll.IntervalSeconds)
	assert.Equal(t, 5, cfg.Availability.FailureThreshold)
	assert.Equal(t, 0.3, cfg.Derived.NominalFlowLPS)
	assert.Equal(t, 0.28, cfg.Derived.TariffPerKWh)
	assert.Equal(t, "tcp://127.0.0.1:1883", cfg.MQTT.Broker)
	assert.Equal(t, ":9090", cfg.Telemetry.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	_, err := Load(writeConfig(t, `
target:
  host: 10.0.0.1
  prot: 502
`))
	assert.Error(t, err, "typoed keys must not pass silently")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Target.Host = "10.0.0.1"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_HostRequired(t *testing.T) {
	assert.Error(t, Validate(&Config{}))
}

func TestValidate_IntervalBounds(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Target.Host = "10.0.0.1"
		return cfg
	}

	for _, tc := range []struct {
		interval int
		ok       bool
	}{
		{0, true}, // unset, Normalize fills 30
		{10, true},
		{300, true},
		{9, false},
		{301, false},
		{-5, false},
	} {
		cfg := base()
		cfg.Poll.IntervalSeconds = tc.interval
		err := Validate(cfg)
		if tc.ok {
			assert.NoError(t, err, "interval %d", tc.interval)
		} else {
			assert.Error(t, err, "interval %d", tc.interval)
		}
	}
}

func TestValidate_Rejections(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"port negative":        func(c *Config) { c.Target.Port = -1 },
		"port too high":        func(c *Config) { c.Target.Port = 70000 },
		"unit id too high":     func(c *Config) { c.Target.UnitID = 248 },
		"unit id negative":     func(c *Config) { c.Target.UnitID = -1 },
		"timeout negative":     func(c *Config) { c.Target.TimeoutMs = -1 },
		"gap over 125":         func(c *Config) { c.Poll.GapThreshold = 126 },
		"block size over 125":  func(c *Config) { c.Poll.MaxBlockSize = 126 },
		"queue size negative":  func(c *Config) { c.Poll.WriteQueueSize = -1 },
		"threshold negative":   func(c *Config) { c.Availability.FailureThreshold = -1 },
		"flow negative":        func(c *Config) { c.Derived.NominalFlowLPS = -0.1 },
		"tariff negative":      func(c *Config) { c.Derived.TariffPerKWh = -0.01 },
		"unknown log level":    func(c *Config) { c.Log.Level = "verbose" },
		"unknown log format":   func(c *Config) { c.Log.Format = "xml" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Target.Host = "10.0.0.1"
			mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Target.Host = "10.0.0.1"
	require.NoError(t, Validate(cfg))

	Normalize(cfg)

	assert.Equal(t, DefaultPort, cfg.Target.Port)
	assert.Equal(t, DefaultUnitID, cfg.Target.UnitID)
	assert.Equal(t, DefaultTimeoutMs, cfg.Target.TimeoutMs)
	assert.Equal(t, DefaultIntervalSeconds, cfg.Poll.IntervalSeconds)
	assert.Equal(t, DefaultGapThreshold, cfg.Poll.GapThreshold)
	assert.Equal(t, DefaultMaxBlockSize, cfg.Poll.MaxBlockSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "10.0.0.1:502", cfg.Target.Endpoint())
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Target.Host = "10.0.0.1"
	cfg.Target.Port = 1502
	cfg.Poll.IntervalSeconds = 120

	Normalize(cfg)

	assert.Equal(t, 1502, cfg.Target.Port)
	assert.Equal(t, 120, cfg.Poll.IntervalSeconds)
}
