package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/everloopd/internal/frame"
	"github.com/smazurov/everloopd/internal/metrics"
)

// Adapter owns the ring's frame buffer and pushes it through a Driver.
// Write failures are logged once per failure streak and counted; they never
// propagate so the sync loop keeps running on flaky hardware.
type Adapter struct {
	driver Driver
	logger *slog.Logger

	mu      sync.RWMutex
	frame   frame.Frame
	lastErr error
}

// NewAdapter creates an adapter with a black frame of count elements.
func NewAdapter(driver Driver, count int, logger *slog.Logger) *Adapter {
	return &Adapter{
		driver: driver,
		logger: logger,
		frame:  frame.New(count),
	}
}

// Len returns the number of elements in the ring.
func (a *Adapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.frame)
}

// SetUniform sets every element to the same color and issues exactly one
// hardware write.
func (a *Adapter) SetUniform(r, g, b, w uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frame.Fill(frame.Element{Red: r, Green: g, Blue: b, White: w})
	a.flush()
}

// Show copies f into the buffer and writes it. Elements beyond the ring
// length are ignored; missing ones are black.
func (a *Adapter) Show(f frame.Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frame.Clear()
	copy(a.frame, f)
	a.flush()
}

// Frame returns a copy of the last frame sent to the driver.
func (a *Adapter) Frame() frame.Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frame.Clone()
}

// Err returns the error of the most recent write, if it failed.
func (a *Adapter) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}

// Driver returns the underlying driver.
func (a *Adapter) Driver() Driver {
	return a.driver
}

// Close blanks the ring and closes the driver.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frame.Clear()
	a.flush()
	return a.driver.Close()
}

// flush writes the buffer. Caller holds mu.
func (a *Adapter) flush() {
	err := a.driver.Write(a.frame)
	metrics.RecordFrameWrite(a.driver.Name(), err)

	switch {
	case err != nil && a.lastErr == nil:
		a.logger.Warn("LED frame write failed", "driver", a.driver.Name(), "error", err)
	case err == nil && a.lastErr != nil:
		a.logger.Info("LED frame writes recovered", "driver", a.driver.Name())
	}
	a.lastErr = err
}
