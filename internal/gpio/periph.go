package gpio

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

// pwmPin is the part of gpio.PinIO the writer uses.
type pwmPin interface {
	Name() string
	PWM(duty gpio.Duty, f physic.Frequency) error
	Halt() error
}

// lookupPin is replaced in tests.
var lookupPin = func(name string) (pwmPin, bool) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, false
	}
	return p, true
}

// periphWriter drives pins through periph's PWM support.
type periphWriter struct {
	format string
	freq   physic.Frequency

	mu   sync.Mutex
	pins map[int]pwmPin
}

func newPeriph(format string, freqHz int) *periphWriter {
	return &periphWriter{
		format: format,
		freq:   physic.Frequency(freqHz) * physic.Hertz,
		pins:   make(map[int]pwmPin),
	}
}

// WriteAnalog sets the pin's duty cycle to value/255.
func (w *periphWriter) WriteAnalog(pin int, value int) error {
	p, err := w.pin(pin)
	if err != nil {
		return err
	}
	duty := gpio.Duty(int64(Clamp(value)) * int64(gpio.DutyMax) / MaxValue)
	if err := p.PWM(duty, w.freq); err != nil {
		return fmt.Errorf("failed to set PWM on %s: %w", p.Name(), err)
	}
	return nil
}

func (w *periphWriter) pin(n int) (pwmPin, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pins[n]; ok {
		return p, nil
	}
	name := fmt.Sprintf(w.format, n)
	p, ok := lookupPin(name)
	if !ok {
		return nil, fmt.Errorf("pin %s not found", name)
	}
	w.pins[n] = p
	return p, nil
}

// Close halts every pin that was driven.
func (w *periphWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for _, p := range w.pins {
		if err := p.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
