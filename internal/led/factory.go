package led

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"periph.io/x/conn/v3/spi/spireg"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// openSPI is replaced in tests.
var openSPI = spireg.Open

// New creates the LED driver named by cfg.Driver. With DriverAuto the
// MATRIX character device is preferred, then an SPI port, then the no-op
// driver. An explicitly named driver that cannot be opened is an error.
// periph's host must be initialized before an SPI driver is requested.
func New(cfg Config, logger *slog.Logger) (Driver, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", cfg.Count)
	}

	switch cfg.Driver {
	case DriverMatrixIO:
		if _, err := os.Stat(cfg.DevicePath); err != nil {
			return nil, fmt.Errorf("everloop device unavailable: %w", err)
		}
		return newMatrixIO(cfg.DevicePath, cfg.Count), nil

	case DriverSPI:
		return openSPIRing(cfg)

	case DriverNoop:
		return newNoop(logger), nil

	case DriverAuto, "":
		return probe(cfg, logger), nil

	default:
		return nil, fmt.Errorf("unknown LED driver %q", cfg.Driver)
	}
}

func probe(cfg Config, logger *slog.Logger) Driver {
	boardModel := detectBoard()
	logger.Info("Detecting LED ring", "board_model", boardModel)

	if _, err := os.Stat(cfg.DevicePath); err == nil {
		logger.Info("Found MATRIX everloop device", "path", cfg.DevicePath)
		return newMatrixIO(cfg.DevicePath, cfg.Count)
	}

	ring, err := openSPIRing(cfg)
	if err == nil {
		logger.Info("Using SPI LED ring", "port", cfg.SPIPort, "freq_hz", cfg.SPIFreqHz)
		return ring
	}

	logger.Info("No LED ring detected, using no-op driver", "board_model", boardModel, "spi_error", err)
	return newNoop(logger)
}

func openSPIRing(cfg Config) (*spiRing, error) {
	port, err := openSPI(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", cfg.SPIPort, err)
	}
	ring, err := newSPIRing(port, port, cfg.Count, cfg.SPIFreqHz)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return ring, nil
}

// detectBoard reads the device tree model to identify the host board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	return strings.TrimRight(string(data), "\x00")
}
