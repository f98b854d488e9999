package led

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"periph.io/x/conn/v3/spi"
)

func failingSPI(t *testing.T) {
	t.Helper()
	orig := openSPI
	openSPI = func(string) (spi.PortCloser, error) { return nil, errors.New("no spi") }
	t.Cleanup(func() { openSPI = orig })
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	failingSPI(t)

	dir := t.TempDir()
	devPath := filepath.Join(dir, "matrixio_everloop")
	if err := os.WriteFile(devPath, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{
			name:     "auto finds char device",
			cfg:      Config{Driver: DriverAuto, Count: 18, DevicePath: devPath},
			wantName: DriverMatrixIO,
		},
		{
			name:     "auto falls back to noop",
			cfg:      Config{Driver: DriverAuto, Count: 18, DevicePath: filepath.Join(dir, "absent")},
			wantName: DriverNoop,
		},
		{
			name:     "empty driver means auto",
			cfg:      Config{Count: 18, DevicePath: filepath.Join(dir, "absent")},
			wantName: DriverNoop,
		},
		{
			name:     "explicit noop",
			cfg:      Config{Driver: DriverNoop, Count: 18},
			wantName: DriverNoop,
		},
		{
			name:    "explicit matrixio missing",
			cfg:     Config{Driver: DriverMatrixIO, Count: 18, DevicePath: filepath.Join(dir, "absent")},
			wantErr: true,
		},
		{
			name:    "explicit spi unavailable",
			cfg:     Config{Driver: DriverSPI, Count: 18},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Driver: "dmx", Count: 18},
			wantErr: true,
		},
		{
			name:    "zero count",
			cfg:     Config{Driver: DriverNoop},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv, err := New(tt.cfg, logger)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("New() = %v, want error", drv.Name())
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if drv.Name() != tt.wantName {
				t.Errorf("driver = %q, want %q", drv.Name(), tt.wantName)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Count != 18 {
		t.Errorf("Count = %d, want 18", cfg.Count)
	}
	if cfg.Driver != DriverAuto {
		t.Errorf("Driver = %q, want auto", cfg.Driver)
	}
}
