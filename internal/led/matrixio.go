package led

import (
	"fmt"
	"os"

	"github.com/smazurov/everloopd/internal/frame"
)

// matrixio writes frames to the MATRIX kernel module's everloop character
// device, which takes R,G,B,W bytes per LED in a single write.
type matrixio struct {
	path  string
	count int
}

func newMatrixIO(path string, count int) *matrixio {
	return &matrixio{path: path, count: count}
}

// Write opens the device, writes the frame, and closes it again.
// O_CREATE is never passed so a missing module fails instead of creating
// a regular file under /dev.
func (m *matrixio) Write(f frame.Frame) error {
	if len(f) != m.count {
		return fmt.Errorf("frame has %d elements, ring has %d", len(f), m.count)
	}

	file, err := os.OpenFile(m.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open everloop device: %w", err)
	}

	buf := f.Bytes()
	n, err := file.Write(buf)
	closeErr := file.Close()
	if err != nil {
		return fmt.Errorf("failed to write everloop frame: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("short everloop write: %d of %d bytes", n, len(buf))
	}
	return closeErr
}

func (m *matrixio) Close() error { return nil }

func (m *matrixio) Name() string { return DriverMatrixIO }
