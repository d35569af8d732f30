package timectrl

import (
	"context"
	"sync"
	"time"
)

// Clock is an interface for reading simulation time. Components that only
// need to know "when is the sky being drawn" depend on this rather than on
// the concrete controller.
type Clock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// Controller drives the viewer's simulation time. Time advances at a signed
// rate of simulated minutes per wall-clock second, and only while playing;
// both knobs map directly onto the animation speed and play/pause flags a
// share URL carries.
type Controller struct {
	mu        sync.RWMutex
	current   time.Time
	rate      float64 // simulated minutes per wall second; negative reverses
	playing   bool
	listeners []func(time.Time)
}

// NewController constructs a paused controller at the given simulation time.
func NewController(start time.Time, rateMinPerSec float64) *Controller {
	return &Controller{
		current: start,
		rate:    rateMinPerSec,
	}
}

// Now returns the current simulation time. Implements Clock.
func (c *Controller) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetTime jumps the simulation to an absolute instant and notifies
// listeners.
func (c *Controller) SetTime(t time.Time) {
	c.mu.Lock()
	c.current = t
	listeners := c.listenersLocked()
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(t)
	}
}

// Rate returns the playback rate in simulated minutes per wall second.
func (c *Controller) Rate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate
}

// SetRate changes the playback rate. The new rate applies from the next
// step; it does not retroactively rescale elapsed time.
func (c *Controller) SetRate(minPerSec float64) {
	c.mu.Lock()
	c.rate = minPerSec
	c.mu.Unlock()
}

// Playing reports whether time advances on Step.
func (c *Controller) Playing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playing
}

// Play resumes playback.
func (c *Controller) Play() {
	c.mu.Lock()
	c.playing = true
	c.mu.Unlock()
}

// Pause halts playback. Now keeps returning the frozen instant.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.playing = false
	c.mu.Unlock()
}

// Step advances simulation time by the simulated equivalent of the given
// wall-clock duration, then notifies listeners. Paused controllers ignore
// the step.
func (c *Controller) Step(wall time.Duration) {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	simulated := time.Duration(float64(wall) * c.rate * 60)
	c.current = c.current.Add(simulated)
	now := c.current
	listeners := c.listenersLocked()
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(now)
	}
}

// AddListener registers a callback invoked after every time change.
func (c *Controller) AddListener(fn func(time.Time)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Run steps the controller on a wall-clock ticker until ctx is cancelled.
func (c *Controller) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Step(tick)
		}
	}
}

func (c *Controller) listenersLocked() []func(time.Time) {
	out := make([]func(time.Time), len(c.listeners))
	copy(out, c.listeners)
	return out
}
