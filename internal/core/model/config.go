package model

import "time"

// Default window parameters
const (
	DefaultWindowDuration      = 5 * time.Hour
	DefaultWarningThresholdPct = 90.0
	CriticalThresholdPct       = 95.0
	DefaultCooldown            = 15 * time.Minute
)

// WindowConfig parameterizes aggregation and alerting. Loaded once at
// startup; changed only through explicit reconfiguration, never by the
// aggregation engine itself.
type WindowConfig struct {
	Duration             time.Duration
	WarningThresholdPct  float64
	NotificationCooldown time.Duration
}

// DefaultWindowConfig returns the documented defaults: a 5 hour rolling
// window, warning at 90 percent, 15 minute notification cooldown.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Duration:             DefaultWindowDuration,
		WarningThresholdPct:  DefaultWarningThresholdPct,
		NotificationCooldown: DefaultCooldown,
	}
}
