package led

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"periph.io/x/conn/v3/spi/spitest"

	"github.com/smazurov/everloopd/internal/frame"
)

func TestNoopDriver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	drv := newNoop(logger)

	if err := drv.Write(frame.New(18)); err != nil {
		t.Errorf("Write() returned error: %v", err)
	}
	if err := drv.Write(nil); err != nil {
		t.Errorf("Write(nil) returned error: %v", err)
	}
	if drv.Name() != DriverNoop {
		t.Errorf("Name() = %q", drv.Name())
	}
}

func TestMatrixIOWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrixio_everloop")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	drv := newMatrixIO(path, 2)
	f := frame.Frame{
		{Red: 1, Green: 2, Blue: 3, White: 4},
		{Red: 5, Green: 6, Blue: 7, White: 8},
	}
	if err := drv.Write(f); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{1, 2, 3, 4, 5, 6, 7, 8}; !bytes.Equal(got, want) {
		t.Errorf("device contents = %v, want %v", got, want)
	}

	// A second frame overwrites rather than appends.
	f.Clear()
	if err := drv.Write(f); err != nil {
		t.Fatal(err)
	}
	got, _ = os.ReadFile(path)
	if !bytes.Equal(got, make([]byte, 8)) {
		t.Errorf("device contents after clear = %v", got)
	}
}

func TestMatrixIOErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	drv := newMatrixIO(missing, 1)

	if err := drv.Write(frame.New(1)); err == nil {
		t.Error("Write() to missing device should fail")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("Write() must not create the device node")
	}
	if err := drv.Write(frame.New(3)); err == nil {
		t.Error("Write() with wrong frame length should fail")
	}
}

func TestSPIRingWrite(t *testing.T) {
	var buf bytes.Buffer
	ring, err := newSPIRing(spitest.NewRecordRaw(&buf), nil, 3, 2_500_000)
	if err != nil {
		t.Fatalf("newSPIRing() error: %v", err)
	}

	f := frame.New(3)
	f.Fill(frame.Element{Red: 255, White: 10})
	if err := ring.Write(f); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("nothing was sent on the SPI port")
	}
	if err := ring.Write(frame.New(2)); err == nil {
		t.Error("Write() with wrong frame length should fail")
	}
	if err := ring.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
