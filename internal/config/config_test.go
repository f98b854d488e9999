package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

type testOptions struct {
	Config string `help:"Config file path"`

	Port      string   `toml:"server.port" env:"SERVER_PORT"`
	LEDDriver string   `toml:"led.driver" env:"LED_DRIVER"`
	LEDCount  int      `toml:"led.count" env:"LED_COUNT"`
	Idle      bool     `toml:"features.idle_animation" env:"FEATURES_IDLE_ANIMATION"`
	PWMHz     float64  `toml:"gpio.pwm_frequency" env:"GPIO_PWM_FREQUENCY"`
	Pins      []int    `toml:"gpio.pins" env:"GPIO_PINS"`
	PinNames  []string `toml:"gpio.names" env:"GPIO_NAMES"`
}

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "everloopd.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeTOML(t, `
[server]
port = ":9000"

[led]
driver = "spi"
count = 18

[features]
idle_animation = true

[gpio]
pwm_frequency = 1000
pins = [12, 25, 26, 27]
names = ["GPIO12", "GPIO25"]
`)

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.Port != ":9000" {
		t.Errorf("Port = %q, want :9000", opts.Port)
	}
	if opts.LEDDriver != "spi" {
		t.Errorf("LEDDriver = %q, want spi", opts.LEDDriver)
	}
	if opts.LEDCount != 18 {
		t.Errorf("LEDCount = %d, want 18", opts.LEDCount)
	}
	if !opts.Idle {
		t.Error("Idle = false, want true")
	}
	if opts.PWMHz != 1000 {
		t.Errorf("PWMHz = %v, want 1000", opts.PWMHz)
	}
	if want := []int{12, 25, 26, 27}; !reflect.DeepEqual(opts.Pins, want) {
		t.Errorf("Pins = %v, want %v", opts.Pins, want)
	}
	if want := []string{"GPIO12", "GPIO25"}; !reflect.DeepEqual(opts.PinNames, want) {
		t.Errorf("PinNames = %v, want %v", opts.PinNames, want)
	}
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	opts := &testOptions{Config: filepath.Join(t.TempDir(), "absent.toml"), Port: ":8080"}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if opts.Port != ":8080" {
		t.Errorf("Port = %q, default should survive", opts.Port)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeTOML(t, "[server\nport = 1")
	if err := LoadConfig(&testOptions{Config: path}, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfigEnvOverridesTOML(t *testing.T) {
	path := writeTOML(t, `
[server]
port = ":9000"

[led]
count = 18
`)
	t.Setenv("EVERLOOPD_SERVER_PORT", ":7000")
	t.Setenv("EVERLOOPD_GPIO_PINS", "12, 27")
	t.Setenv("EVERLOOPD_GPIO_PWM_FREQUENCY", "250.5")

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.Port != ":7000" {
		t.Errorf("Port = %q, want env override :7000", opts.Port)
	}
	if opts.LEDCount != 18 {
		t.Errorf("LEDCount = %d, want 18 from TOML", opts.LEDCount)
	}
	if want := []int{12, 27}; !reflect.DeepEqual(opts.Pins, want) {
		t.Errorf("Pins = %v, want %v", opts.Pins, want)
	}
	if opts.PWMHz != 250.5 {
		t.Errorf("PWMHz = %v, want 250.5", opts.PWMHz)
	}
}

func TestLoadConfigCLIWins(t *testing.T) {
	path := writeTOML(t, "[server]\nport = \":9000\"\n")
	t.Setenv("EVERLOOPD_SERVER_PORT", ":7000")

	cmd := &cobra.Command{Use: "test"}
	opts := &testOptions{Config: path}
	cmd.Flags().StringVar(&opts.Port, "port", ":8080", "")
	if err := cmd.Flags().Set("port", ":6000"); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if opts.Port != ":6000" {
		t.Errorf("Port = %q, want CLI value :6000", opts.Port)
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":              "port",
		"LoggingLevel":      "logging-level",
		"FeaturesIdleAnim":  "features-idle-anim",
		"LedSpiFrequencyHz": "led-spi-frequency-hz",
		"GPIOFreqHz":        "gpio-freq-hz",
		"LEDSpiFreqHz":      "led-spi-freq-hz",
		"NATSUrl":           "nats-url",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"led": map[string]any{
			"spi":   map[string]any{"device": "/dev/spidev0.0"},
			"count": int64(18),
		},
		"root": "root_value",
	}

	tests := []struct {
		path     string
		expected any
	}{
		{"root", "root_value"},
		{"led.count", int64(18)},
		{"led.spi.device", "/dev/spidev0.0"},
		{"missing", nil},
		{"root.child", nil},
	}

	for _, tt := range tests {
		if got := getNestedValue(data, tt.path); got != tt.expected {
			t.Errorf("getNestedValue(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func TestLoadReloadable(t *testing.T) {
	path := writeTOML(t, `
[features]
idle_animation = true

[logging]
level = "debug"
format = "json"
device = "warn"

[logging.modules]
http = "error"
`)

	cfg, err := LoadReloadable(path)
	if err != nil {
		t.Fatalf("LoadReloadable failed: %v", err)
	}

	if !cfg.Features.IdleAnimation {
		t.Error("IdleAnimation = false, want true")
	}
	if !cfg.Features.GPIOMirroring {
		t.Error("GPIOMirroring should keep its default when absent")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if cfg.Logging.Modules["device"] != "warn" || cfg.Logging.Modules["http"] != "error" {
		t.Errorf("Modules = %v", cfg.Logging.Modules)
	}
}

func TestLoadLoggingConfigDefaults(t *testing.T) {
	cfg := LoadLoggingConfig("")
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("defaults = %+v, want info/text", cfg)
	}
}
