// Package retention implements the data-lifecycle engine aging out inactive
// items and user accounts: mark, warn, grace period, hard delete.
package retention

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// StrategyInactivity selects active users by the age of their last login.
	StrategyInactivity = "inactivity"
	// StrategyDeactivation selects users by the age of their deactivation.
	StrategyDeactivation = "deactivation"
)

// A Config holds the retention settings, read once at process start.
type Config struct {
	// Strategy decides how users qualify for deletion marking.
	Strategy string
	// InactivityDays is the inactivity threshold for items and for the
	// inactivity user strategy.
	InactivityDays int
	// GracePeriodDays is the interval between marking and hard deletion.
	GracePeriodDays int
	// WarningWindow is the width of the item warning selection window.
	WarningWindow time.Duration
	// ExternalCallTimeout bounds each email or image-store call.
	ExternalCallTimeout time.Duration
	// FrontendURL is the base URL embedded in warning emails.
	FrontendURL string
}

// DefaultConfig returns the default retention settings.
func DefaultConfig() Config {
	return Config{
		Strategy:            StrategyInactivity,
		InactivityDays:      60,
		GracePeriodDays:     7,
		WarningWindow:       24 * time.Hour,
		ExternalCallTimeout: 15 * time.Second,
	}
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	switch c.Strategy {
	case "":
		c.Strategy = StrategyInactivity
	case StrategyInactivity, StrategyDeactivation:
	default:
		return errors.Errorf("unknown user deletion strategy: %s", c.Strategy)
	}

	if c.InactivityDays <= 0 {
		c.InactivityDays = 60
	}
	if c.GracePeriodDays <= 0 {
		c.GracePeriodDays = 7
	}
	if c.WarningWindow <= 0 {
		c.WarningWindow = 24 * time.Hour
	}
	if c.ExternalCallTimeout <= 0 {
		c.ExternalCallTimeout = 15 * time.Second
	}
	return nil
}

// InactivityCutoff returns the moment before which an entity counts as inactive.
func (c Config) InactivityCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.InactivityDays)
}

// GraceCutoff returns the moment before which a scheduled entity is purgeable.
func (c Config) GraceCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.GracePeriodDays)
}
