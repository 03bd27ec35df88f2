package boot

import (
	"time"

	"bootcode-go/diag"
	"bootcode-go/services/idle"
	"bootcode-go/x/timex"
)

// Bounds applied by Config.Normalised.
const (
	MinBlinkInterval = 10 * time.Millisecond
	MaxBlinkInterval = time.Second
	MinIdleTimeout   = time.Second
	MaxIdleTimeout   = 10 * time.Minute
)

type Config struct {
	Idle     idle.Config
	Tag      string // log line prefix
	LogLevel diag.Level
}

func DefaultConfig() Config {
	return Config{Idle: idle.DefaultConfig(), Tag: "boot", LogLevel: diag.LevelInfo}
}

// Normalised returns cfg with zero fields defaulted and durations clamped.
func (cfg Config) Normalised() Config {
	d := DefaultConfig()
	if cfg.Idle.BlinkInterval == 0 {
		cfg.Idle.BlinkInterval = d.Idle.BlinkInterval
	}
	if cfg.Idle.IdleTimeout == 0 {
		cfg.Idle.IdleTimeout = d.Idle.IdleTimeout
	}
	cfg.Idle.BlinkInterval = timex.Clamp(cfg.Idle.BlinkInterval, MinBlinkInterval, MaxBlinkInterval)
	cfg.Idle.IdleTimeout = timex.Clamp(cfg.Idle.IdleTimeout, MinIdleTimeout, MaxIdleTimeout)
	cfg.LogLevel = timex.Clamp(cfg.LogLevel, diag.LevelInfo, diag.LevelError)
	return cfg
}
