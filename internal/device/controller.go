package device

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/smazurov/everloopd/internal/colorx"
	"github.com/smazurov/everloopd/internal/events"
	"github.com/smazurov/everloopd/internal/metrics"
	"github.com/smazurov/everloopd/internal/things"
)

// DefaultPollInterval paces iterations that do not animate.
const DefaultPollInterval = 10 * time.Millisecond

// Controller synchronizes a property store onto the actuators in State.
type Controller struct {
	store  *things.Store
	state  *State
	logger *slog.Logger
	bus    *events.Bus

	pollInterval time.Duration
	reload       chan Features
	onTick       func()

	badColor   string
	pinFailing map[int]bool
	applied    atomic.Pointer[Features]
}

// Option configures a Controller.
type Option func(*Controller)

// WithEventBus publishes a DeviceStateChangedEvent on every flip of on.
func WithEventBus(bus *events.Bus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithTick registers fn to run after every iteration of Run.
func WithTick(fn func()) Option {
	return func(c *Controller) { c.onTick = fn }
}

// NewController creates a controller. Nothing runs until Step or Run.
func NewController(store *things.Store, state *State, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:        store,
		state:        state,
		logger:       logger,
		pollInterval: DefaultPollInterval,
		reload:       make(chan Features, 1),
		pinFailing:   make(map[int]bool),
	}
	features := state.Features
	c.applied.Store(&features)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reload hands new features to the loop. They take effect at the start of
// the next iteration; a newer call replaces one not yet applied.
func (c *Controller) Reload(f Features) {
	for {
		select {
		case c.reload <- f:
			return
		default:
		}
		select {
		case <-c.reload:
		default:
		}
	}
}

// Features returns the features the loop last applied. Safe for
// concurrent use.
func (c *Controller) Features() Features {
	return *c.applied.Load()
}

// Step runs one iteration and reports whether it drew an animation frame.
func (c *Controller) Step(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	c.applyReload()
	c.store.Update()

	on := c.store.Bool(things.PropOn)
	level := colorx.ClampLevel(int(c.store.Number(things.PropLevel)))
	color := c.store.Text(things.PropColor)

	animated := c.render(on, level, color)
	c.mirrorGPIO()
	metrics.SetDeviceState(on, level)

	if on != c.state.Shadow.On {
		c.state.Shadow.On = on
		c.logger.Info("Device state changed",
			"device", c.store.Device().ID,
			"on", on,
			"level", level,
			"color", color)
		if c.bus != nil {
			c.bus.Publish(events.DeviceStateChangedEvent{
				Thing:     c.store.Device().ID,
				On:        on,
				Level:     level,
				Color:     color,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	c.state.Shadow.Color = color

	return animated
}

// render updates the ring. An explicit color always wins over the chase.
func (c *Controller) render(on bool, level int, color string) bool {
	leds := c.state.LEDs

	switch {
	case on:
		if !colorx.Valid(color) {
			if color != c.badColor {
				c.logger.Warn("Invalid color, rendering black", "color", color)
				c.badColor = color
			}
		} else {
			c.badColor = ""
		}
		rgb := colorx.Decode(color, level)
		leds.SetUniform(rgb.Red, rgb.Green, rgb.Blue, 0)
		return false

	case c.state.Features.IdleAnimation:
		c.state.Chase.Draw(c.state.scratch)
		leds.Show(c.state.scratch)
		return true

	default:
		leds.SetUniform(0, 0, 0, 0)
		return false
	}
}

// mirrorGPIO writes every pin level, whether or not it changed.
func (c *Controller) mirrorGPIO() {
	if !c.state.Features.GPIOMirroring || c.state.GPIO == nil {
		return
	}
	for _, pin := range c.state.Pins {
		value := int(c.store.Number(things.GPIOProperty(pin)))
		err := c.state.GPIO.WriteAnalog(pin, value)
		if err != nil {
			metrics.IncGPIOErrors(pin)
			if !c.pinFailing[pin] {
				c.logger.Warn("GPIO write failed", "pin", pin, "value", value, "error", err)
				c.pinFailing[pin] = true
			}
			continue
		}
		if c.pinFailing[pin] {
			c.logger.Info("GPIO writes recovered", "pin", pin)
			delete(c.pinFailing, pin)
		}
		metrics.SetGPIOLevel(pin, value)
	}
}

func (c *Controller) applyReload() {
	select {
	case f := <-c.reload:
		if f != c.state.Features {
			c.logger.Info("Applying feature change",
				"idle_animation", f.IdleAnimation,
				"gpio_mirroring", f.GPIOMirroring)
		}
		c.state.Features = f
		c.applied.Store(&f)
	default:
	}
}

// Run repeats Step until ctx is cancelled. A panicking step is logged and
// the loop carries on.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("Sync loop started",
		"device", c.store.Device().ID,
		"idle_animation", c.state.Features.IdleAnimation,
		"gpio_mirroring", c.state.Features.GPIOMirroring,
		"pins", len(c.state.Pins))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Sync loop stopped")
			return ctx.Err()
		case <-timer.C:
		}

		start := time.Now()
		animated := c.safeStep(ctx)
		metrics.IncLoopIterations(time.Since(start).Seconds())
		if c.onTick != nil {
			c.onTick()
		}

		delay := c.pollInterval
		if animated {
			delay = c.state.Chase.Interval()
		}
		timer.Reset(delay)
	}
}

func (c *Controller) safeStep(ctx context.Context) (animated bool) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncLoopPanics()
			c.logger.Error("Sync loop step panicked", "panic", r)
			animated = false
		}
	}()
	return c.Step(ctx)
}
