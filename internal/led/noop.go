package led

import (
	"log/slog"

	"github.com/smazurov/everloopd/internal/frame"
)

// noop implements Driver for hosts without an LED ring.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

// Write logs the frame but touches no hardware.
func (n *noop) Write(f frame.Frame) error {
	if len(f) > 0 {
		n.logger.Debug("LED ring not available (no-op)", "elements", len(f), "first", f[0].String())
	}
	return nil
}

func (n *noop) Close() error { return nil }

func (n *noop) Name() string { return DriverNoop }
