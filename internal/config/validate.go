package config

import (
	"fmt"
)

// Poll interval bounds the device supports.
const (
	MinIntervalSeconds = 10
	MaxIntervalSeconds = 300
)

// Validate checks configuration correctness. It performs declarative
// validation only and MUST NOT mutate configuration. Zero values mean
// "unset" and are filled by Normalize afterwards.
func Validate(cfg *Config) error {
	if cfg.Target.Host == "" {
		return fmt.Errorf("config: target.host is required")
	}
	if cfg.Target.Port < 0 || cfg.Target.Port > 65535 {
		return fmt.Errorf("config: target.port %d out of range", cfg.Target.Port)
	}
	if cfg.Target.UnitID != 0 && (cfg.Target.UnitID < 1 || cfg.Target.UnitID > 247) {
		return fmt.Errorf("config: target.unit_id %d outside 1-247", cfg.Target.UnitID)
	}
	if cfg.Target.TimeoutMs < 0 {
		return fmt.Errorf("config: target.timeout_ms must be >= 0")
	}

	if cfg.Poll.IntervalSeconds != 0 &&
		(cfg.Poll.IntervalSeconds < MinIntervalSeconds || cfg.Poll.IntervalSeconds > MaxIntervalSeconds) {
		return fmt.Errorf("config: poll.interval_seconds %d outside %d-%d",
			cfg.Poll.IntervalSeconds, MinIntervalSeconds, MaxIntervalSeconds)
	}
	if cfg.Poll.GapThreshold < 0 || cfg.Poll.GapThreshold > 125 {
		return fmt.Errorf("config: poll.gap_threshold %d outside 0-125", cfg.Poll.GapThreshold)
	}
	if cfg.Poll.MaxBlockSize < 0 || cfg.Poll.MaxBlockSize > 125 {
		return fmt.Errorf("config: poll.max_block_size %d outside 1-125", cfg.Poll.MaxBlockSize)
	}
	if cfg.Poll.WriteQueueSize < 0 {
		return fmt.Errorf("config: poll.write_queue_size must be >= 0")
	}

	if cfg.Availability.FailureThreshold < 0 {
		return fmt.Errorf("config: availability.failure_threshold must be >= 0")
	}

	if cfg.Derived.NominalFlowLPS < 0 {
		return fmt.Errorf("config: derived.nominal_flow_lps must be >= 0")
	}
	if cfg.Derived.TariffPerKWh < 0 {
		return fmt.Errorf("config: derived.tariff_per_kwh must be >= 0")
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q unknown", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("config: log.format %q unknown", cfg.Log.Format)
	}

	return nil
}
