package gpio

import (
	"log/slog"
	"sync"
)

// Noop records the last value per pin without touching hardware.
type Noop struct {
	logger *slog.Logger

	mu     sync.Mutex
	values map[int]uint8
}

// NewNoop creates a recording writer.
func NewNoop(logger *slog.Logger) *Noop {
	return &Noop{logger: logger, values: make(map[int]uint8)}
}

// WriteAnalog stores the clamped value.
func (n *Noop) WriteAnalog(pin int, value int) error {
	v := Clamp(value)
	n.mu.Lock()
	prev, seen := n.values[pin]
	n.values[pin] = v
	n.mu.Unlock()

	if !seen || prev != v {
		n.logger.Debug("GPIO not available (no-op)", "pin", pin, "value", v)
	}
	return nil
}

// Value returns the last value written to pin.
func (n *Noop) Value(pin int) (uint8, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.values[pin]
	return v, ok
}
