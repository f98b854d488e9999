package gpio

import (
	"fmt"
	"log/slog"
)

// New creates the writer named by cfg.Driver. DriverAuto uses periph when
// the first pin of probePins resolves, otherwise the no-op writer.
// periph's host must be initialized first.
func New(cfg Config, probePins []int, logger *slog.Logger) (Writer, error) {
	switch cfg.Driver {
	case DriverPeriph:
		return newPeriph(cfg.PinFormat, cfg.FreqHz), nil
	case DriverNoop:
		return NewNoop(logger), nil
	case DriverAuto, "":
		if len(probePins) > 0 {
			name := fmt.Sprintf(cfg.PinFormat, probePins[0])
			if _, ok := lookupPin(name); ok {
				logger.Info("Using periph PWM for GPIO mirroring", "probe_pin", name, "freq_hz", cfg.FreqHz)
				return newPeriph(cfg.PinFormat, cfg.FreqHz), nil
			}
			logger.Info("No PWM pins found, using no-op GPIO writer", "probe_pin", name)
		}
		return NewNoop(logger), nil
	default:
		return nil, fmt.Errorf("unknown GPIO driver %q", cfg.Driver)
	}
}
