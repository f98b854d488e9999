// Package animation renders the idle chase shown while the light is off.
package animation

import (
	"time"

	"github.com/smazurov/everloopd/internal/frame"
)

// Defaults for the chase.
const (
	DefaultIntensity = 10
	DefaultInterval  = 25 * time.Millisecond
)

// Marker divisors. Distinct primes keep the four markers drifting apart.
const (
	redDivisor   = 7
	greenDivisor = 11
	blueDivisor  = 13
	whiteDivisor = 17
)

// Chase moves four dim single-channel markers around the ring at different
// speeds; blue travels in the opposite direction. Chase is not safe for
// concurrent use.
type Chase struct {
	counter   uint32
	intensity uint8
	interval  time.Duration
}

// NewChase creates a chase. Zero arguments select the defaults.
func NewChase(intensity uint8, interval time.Duration) *Chase {
	if intensity == 0 {
		intensity = DefaultIntensity
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Chase{intensity: intensity, interval: interval}
}

// Draw clears f, places the markers for the current counter, and advances
// the counter. Later markers overwrite earlier ones on a shared index.
// The counter wraps at 2^32, which only causes a one-off jump.
func (c *Chase) Draw(f frame.Frame) {
	f.Clear()
	n := uint32(len(f))
	if n == 0 {
		c.counter++
		return
	}

	v := c.intensity
	f.Set(int((c.counter/redDivisor)%n), frame.Element{Red: v})
	f.Set(int((c.counter/greenDivisor)%n), frame.Element{Green: v})
	f.Set(int(n-1-(c.counter/blueDivisor)%n), frame.Element{Blue: v})
	f.Set(int((c.counter/whiteDivisor)%n), frame.Element{White: v})

	c.counter++
}

// Counter returns the number of frames drawn so far, modulo 2^32.
func (c *Chase) Counter() uint32 { return c.counter }

// SetCounter positions the chase, mostly for tests.
func (c *Chase) SetCounter(v uint32) { c.counter = v }

// Interval is the delay between animated frames.
func (c *Chase) Interval() time.Duration { return c.interval }
