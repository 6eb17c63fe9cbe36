package tui

import (
	"time"
)

// GameClock converts wall time into the engine's logical time by
// subtracting the total paused interval. The engine rejects time
// regressions, so the clock only ever moves forward.
type GameClock struct {
	start       time.Time
	paused      bool
	pausedAt    time.Time
	totalPaused time.Duration
}

// NewGameClock starts a clock at logical zero.
func NewGameClock() *GameClock {
	return &GameClock{start: time.Now()}
}

// Now returns the current logical game time.
func (c *GameClock) Now() time.Duration {
	if c.paused {
		return c.pausedAt.Sub(c.start) - c.totalPaused
	}
	return time.Since(c.start) - c.totalPaused
}

// Pause freezes logical time.
func (c *GameClock) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = time.Now()
}

// Resume continues logical time where it stopped.
func (c *GameClock) Resume() {
	if !c.paused {
		return
	}
	c.totalPaused += time.Since(c.pausedAt)
	c.paused = false
}

// IsPaused reports whether the clock is frozen.
func (c *GameClock) IsPaused() bool {
	return c.paused
}

// Toggle pauses a running clock and resumes a paused one.
func (c *GameClock) Toggle() {
	if c.paused {
		c.Resume()
	} else {
		c.Pause()
	}
}
