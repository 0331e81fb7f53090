package dsst

import (
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// ReinitClock decides when the force models must recompute their cached short-periodic coefficients.
// It only ever moves forward, by whole intervals.
type ReinitClock struct {
	lastReset time.Time
	interval  time.Duration
	logger    kitlog.Logger
}

// NewReinitClock returns a clock whose first window starts at the provided date.
func NewReinitClock(start time.Time, interval time.Duration, logger kitlog.Logger) *ReinitClock {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &ReinitClock{start, interval, logger}
}

// LastReset returns the start of the current window.
func (c *ReinitClock) LastReset() time.Time {
	return c.lastReset
}

// NextReset returns the first date at which the current window is no longer valid.
func (c *ReinitClock) NextReset() time.Time {
	return c.lastReset.Add(c.interval)
}

// CheckAndReset initializes all the models with the provided mean state if dt reached the next boundary,
// and then advances the window by exactly one interval.
func (c *ReinitClock) CheckAndReset(dt time.Time, mean SpacecraftState, forces ForceModels) (bool, error) {
	next := c.NextReset()
	if dt.Before(next) {
		return false, nil
	}
	if err := forces.InitializeAll(mean); err != nil {
		return false, err
	}
	c.lastReset = next
	reinitCount.Inc()
	c.logger.Log("level", "debug", "subsys", "dsst", "reinit", c.lastReset, "next", c.NextReset(), "models", len(forces))
	return true, nil
}
