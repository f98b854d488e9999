// Package gpio writes analog (PWM) levels to the board's exposed pins.
package gpio

// Driver names accepted by New.
const (
	DriverAuto   = "auto"
	DriverPeriph = "periph"
	DriverNoop   = "noop"
)

// MaxValue is the largest analog level a pin accepts.
const MaxValue = 255

// Writer sets the analog level of a numbered pin.
type Writer interface {
	WriteAnalog(pin int, value int) error
}

// Closer is implemented by writers that hold hardware resources.
type Closer interface {
	Close() error
}

// Config selects and parameterizes a writer.
type Config struct {
	Driver string `toml:"driver"`
	// PinFormat maps a pin number to a periph pin name.
	PinFormat string `toml:"pin_format"`
	FreqHz    int    `toml:"pwm_freq_hz"`
}

// DefaultConfig returns the settings for the MATRIX Voice header.
func DefaultConfig() Config {
	return Config{
		Driver:    DriverAuto,
		PinFormat: "GPIO%d",
		FreqHz:    1000,
	}
}

// Clamp limits value to [0, MaxValue].
func Clamp(value int) uint8 {
	return uint8(min(max(value, 0), MaxValue))
}
