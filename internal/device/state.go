// Package device runs the loop that renders the board's properties onto
// the LED ring and GPIO pins.
package device

import (
	"github.com/smazurov/everloopd/internal/animation"
	"github.com/smazurov/everloopd/internal/frame"
	"github.com/smazurov/everloopd/internal/gpio"
)

// Features are the variant switches of the loop.
type Features struct {
	// IdleAnimation draws the chase while the light is off.
	IdleAnimation bool
	// GPIOMirroring writes the gpioNlevel properties to their pins.
	GPIOMirroring bool
}

// LEDs is the part of led.Adapter the loop drives.
type LEDs interface {
	SetUniform(r, g, b, w uint8)
	Show(f frame.Frame)
	Len() int
}

// Shadow is the last state the loop acted on, used for edge detection.
type Shadow struct {
	On    bool
	Color string
}

// State is everything the loop owns. Only the loop goroutine touches it.
type State struct {
	LEDs     LEDs
	GPIO     gpio.Writer
	Chase    *animation.Chase
	Pins     []int
	Features Features
	Shadow   Shadow

	scratch frame.Frame
}

// NewState assembles the loop state. pins lists the GPIO pins whose level
// properties exist on the device; it may be empty.
func NewState(leds LEDs, writer gpio.Writer, chase *animation.Chase, features Features, pins []int) *State {
	if chase == nil {
		chase = animation.NewChase(0, 0)
	}
	return &State{
		LEDs:     leds,
		GPIO:     writer,
		Chase:    chase,
		Pins:     append([]int(nil), pins...),
		Features: features,
		scratch:  frame.New(leds.Len()),
	}
}
