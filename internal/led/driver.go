// Package led drives the everloop RGBW LED ring.
package led

import "github.com/smazurov/everloopd/internal/frame"

// Driver names accepted by New.
const (
	DriverAuto     = "auto"
	DriverMatrixIO = "matrixio"
	DriverSPI      = "spi"
	DriverNoop     = "noop"
)

// Driver pushes a complete frame to the LED hardware. Implementations
// handle the transport; a Write either latches the whole frame or fails.
type Driver interface {
	// Write sends every element of f in ring order.
	Write(f frame.Frame) error

	// Close releases the transport. The ring keeps its last frame.
	Close() error

	// Name identifies the driver in logs and metrics.
	Name() string
}

// Config selects and parameterizes a driver.
type Config struct {
	Driver     string `toml:"driver"`
	Count      int    `toml:"count"`
	DevicePath string `toml:"device"`
	SPIPort    string `toml:"spi_port"`
	SPIFreqHz  int    `toml:"spi_freq_hz"`
}

// DefaultConfig returns the MATRIX Voice ring settings.
func DefaultConfig() Config {
	return Config{
		Driver:     DriverAuto,
		Count:      18,
		DevicePath: "/dev/matrixio_everloop",
		SPIFreqHz:  2_500_000,
	}
}
