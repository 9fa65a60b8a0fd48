package model

import "time"

// Config is an immutable snapshot of the user tunables.
// A new value is built on every settings change and handed to the gate.
type Config struct {
	ClickLimit     int
	UnlockDuration time.Duration
	BlockClicks    bool
	GracePeriod    int

	ShowTrayIcon      bool
	ShowExitButton    bool
	RegisterForReboot bool
	RedirectOnUnlock  bool
}

const (
	MinClickLimit     = 1
	MaxClickLimit     = 10000
	MinUnlockDuration = 100 * time.Millisecond
	MaxUnlockDuration = 60 * time.Second
)

// DefaultConfig returns the out-of-the-box tunables.
func DefaultConfig() Config {
	return Config{
		ClickLimit:     5,
		UnlockDuration: 5 * time.Second,
		BlockClicks:    true,
		GracePeriod:    0,
		ShowTrayIcon:   true,
		ShowExitButton: true,
	}
}

// Normalized clamps out-of-range values to the nearest valid one.
func (config Config) Normalized() Config {
	if config.ClickLimit < MinClickLimit {
		config.ClickLimit = MinClickLimit
	}
	if config.ClickLimit > MaxClickLimit {
		config.ClickLimit = MaxClickLimit
	}
	if config.UnlockDuration < MinUnlockDuration {
		config.UnlockDuration = MinUnlockDuration
	}
	if config.UnlockDuration > MaxUnlockDuration {
		config.UnlockDuration = MaxUnlockDuration
	}
	if config.GracePeriod < 0 {
		config.GracePeriod = 0
	}
	return config
}
