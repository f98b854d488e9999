package led

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"

	"github.com/smazurov/everloopd/internal/frame"
)

// spiRing drives an SK6812 RGBW ring with NRZ encoding over SPI.
type spiRing struct {
	dev    *nrzled.Dev
	closer io.Closer
	count  int
}

// newSPIRing wraps an opened SPI port. closer may be nil when the port is
// owned elsewhere, as in tests.
func newSPIRing(port spi.Port, closer io.Closer, count int, freqHz int) (*spiRing, error) {
	opts := nrzled.Opts{
		NumPixels: count,
		Channels:  frame.ChannelsPerElement,
		Freq:      physic.Frequency(freqHz) * physic.Hertz,
	}
	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create nrzled device: %w", err)
	}
	return &spiRing{dev: dev, closer: closer, count: count}, nil
}

func (s *spiRing) Write(f frame.Frame) error {
	if len(f) != s.count {
		return fmt.Errorf("frame has %d elements, ring has %d", len(f), s.count)
	}
	if _, err := s.dev.Write(f.Bytes()); err != nil {
		return fmt.Errorf("failed to write SPI frame: %w", err)
	}
	return nil
}

func (s *spiRing) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *spiRing) Name() string { return DriverSPI }
