package config

// Defaults match the unit's documentation; a minimal config file only
// needs target.host.
const (
	DefaultPort            = 502
	DefaultUnitID          = 1
	DefaultTimeoutMs       = 5000
	DefaultIntervalSeconds = 30
	DefaultGapThreshold    = 8
	DefaultMaxBlockSize    = 125
)

// Normalize applies post-validation defaults. It is allowed to mutate
// configuration and MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Target.Port == 0 {
		cfg.Target.Port = DefaultPort
	}
	if cfg.Target.UnitID == 0 {
		cfg.Target.UnitID = DefaultUnitID
	}
	if cfg.Target.TimeoutMs == 0 {
		cfg.Target.TimeoutMs = DefaultTimeoutMs
	}

	if cfg.Poll.IntervalSeconds == 0 {
		cfg.Poll.IntervalSeconds = DefaultIntervalSeconds
	}
	if cfg.Poll.GapThreshold == 0 {
		cfg.Poll.GapThreshold = DefaultGapThreshold
	}
	if cfg.Poll.MaxBlockSize == 0 {
		cfg.Poll.MaxBlockSize = DefaultMaxBlockSize
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}
