package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"periph.io/x/host/v3"

	"github.com/smazurov/everloopd/cmd"
	"github.com/smazurov/everloopd/internal/animation"
	"github.com/smazurov/everloopd/internal/api"
	"github.com/smazurov/everloopd/internal/config"
	"github.com/smazurov/everloopd/internal/device"
	"github.com/smazurov/everloopd/internal/events"
	"github.com/smazurov/everloopd/internal/gpio"
	"github.com/smazurov/everloopd/internal/led"
	"github.com/smazurov/everloopd/internal/logging"
	"github.com/smazurov/everloopd/internal/metrics"
	"github.com/smazurov/everloopd/internal/nats"
	"github.com/smazurov/everloopd/internal/network"
	"github.com/smazurov/everloopd/internal/systemd"
	"github.com/smazurov/everloopd/internal/things"
	"github.com/smazurov/everloopd/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8080" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings, empty disables auth
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// LED ring
	LEDDriver    string `help:"LED driver (auto, matrixio, spi, noop)" default:"auto" toml:"led.driver" env:"LED_DRIVER"`
	LEDCount     int    `help:"Number of LEDs on the ring" default:"18" toml:"led.count" env:"LED_COUNT"`
	LEDDevice    string `help:"MATRIX everloop character device" default:"/dev/matrixio_everloop" toml:"led.device" env:"LED_DEVICE"`
	LEDSpiPort   string `help:"SPI port for the spi driver, empty for the first port" default:"" toml:"led.spi_port" env:"LED_SPI_PORT"`
	LEDSpiFreqHz int    `help:"SPI clock for the spi driver" default:"2500000" toml:"led.spi_freq_hz" env:"LED_SPI_FREQ_HZ"`

	// GPIO header
	GPIODriver    string `help:"GPIO driver (auto, periph, noop)" default:"auto" toml:"gpio.driver" env:"GPIO_DRIVER"`
	GPIOPinFormat string `help:"Pin name format passed to periph" default:"GPIO%d" toml:"gpio.pin_format" env:"GPIO_PIN_FORMAT"`
	GPIOFreqHz    int    `help:"PWM frequency" default:"1000" toml:"gpio.pwm_freq_hz" env:"GPIO_PWM_FREQ_HZ"`

	// Features settings, hot reloaded
	FeaturesIdleAnimation bool `help:"Run the chase animation while off" default:"false" toml:"features.idle_animation" env:"FEATURES_IDLE_ANIMATION"`
	FeaturesGPIOMirroring bool `help:"Expose and mirror GPIO level properties" default:"true" toml:"features.gpio_mirroring" env:"FEATURES_GPIO_MIRRORING"`

	// Loop and animation timing
	LoopPollIntervalMs  int `help:"Wait between non-animated iterations" default:"10" toml:"loop.poll_interval_ms" env:"LOOP_POLL_INTERVAL_MS"`
	AnimationIntervalMs int `help:"Wait between animation frames" default:"25" toml:"animation.interval_ms" env:"ANIMATION_INTERVAL_MS"`
	AnimationIntensity  int `help:"Channel value of the chase markers" default:"10" toml:"animation.intensity" env:"ANIMATION_INTENSITY"`

	// Network wait
	NetworkWait       bool   `help:"Wait for a routable address before serving" default:"true" toml:"network.wait" env:"NETWORK_WAIT"`
	NetworkInterface  string `help:"Only consider this interface" default:"" toml:"network.interface" env:"NETWORK_INTERFACE"`
	NetworkIntervalMs int    `help:"Network poll interval" default:"500" toml:"network.interval_ms" env:"NETWORK_INTERVAL_MS"`

	// Optional NATS bridge
	NATSUrl string `help:"NATS server URL, empty disables the bridge" default:"" toml:"nats.url" env:"NATS_URL"`

	MetricsEnabled bool `help:"Serve Prometheus metrics at /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingDevice  string `help:"Sync loop logging level" default:"info" toml:"logging.device" env:"LOGGING_DEVICE"`
	LoggingLED     string `help:"LED driver logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingGPIO    string `help:"GPIO driver logging level" default:"info" toml:"logging.gpio" env:"LOGGING_GPIO"`
	LoggingThings  string `help:"Property store logging level" default:"info" toml:"logging.things" env:"LOGGING_THINGS"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP    string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingNetwork string `help:"Network wait logging level" default:"info" toml:"logging.network" env:"LOGGING_NETWORK"`
	LoggingNATS    string `help:"NATS bridge logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"device":  o.LoggingDevice,
			"led":     o.LoggingLED,
			"gpio":    o.LoggingGPIO,
			"things":  o.LoggingThings,
			"api":     o.LoggingAPI,
			"http":    o.LoggingHTTP,
			"network": o.LoggingNetwork,
			"nats":    o.LoggingNATS,
		},
	}
}

func (o *Options) features() device.Features {
	return device.Features{
		IdleAnimation: o.FeaturesIdleAnimation,
		GPIOMirroring: o.FeaturesGPIOMirroring,
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func main() {
	var root *cobra.Command

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Flags set on the command line must survive the file and env layers
		if loadErr := config.LoadConfig(opts, root); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.loggingConfig())
		logger := logging.GetLogger("main")

		eventBus := events.New()
		var logSeq atomic.Uint64
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Seq:        logSeq.Add(1),
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		// The schema is fixed for the lifetime of the process
		features := opts.features()
		board, err := things.NewBoardDevice(features.GPIOMirroring)
		if err != nil {
			logger.Error("Failed to build device schema", "error", err)
			os.Exit(1)
		}
		var pins []int
		if features.GPIOMirroring {
			pins = things.GPIOPins
		}
		store := things.NewStore(board, logging.GetLogger("things"), things.WithEventBus(eventBus))

		notifier := systemd.NewNotifier(logger)
		ctx, cancel := context.WithCancel(context.Background())
		loopDone := make(chan struct{})

		var (
			adapter    *led.Adapter
			writer     gpio.Writer
			controller *device.Controller
			server     *api.Server
			bridge     *nats.Bridge
			watcher    *config.Watcher[config.Reloadable]
		)

		hooks.OnStart(func() {
			defer close(loopDone)
			logger.Info("Starting everloopd", "version", version.String())

			if _, initErr := host.Init(); initErr != nil {
				logger.Warn("Failed to initialize periph host drivers", "error", initErr)
			}

			ledCfg := led.Config{
				Driver:     opts.LEDDriver,
				Count:      opts.LEDCount,
				DevicePath: opts.LEDDevice,
				SPIPort:    opts.LEDSpiPort,
				SPIFreqHz:  opts.LEDSpiFreqHz,
			}
			ledLogger := logging.GetLogger("led")
			driver, openErr := led.New(ledCfg, ledLogger)
			if openErr != nil {
				logger.Error("Failed to open LED driver", "error", openErr)
				os.Exit(1)
			}
			adapter = led.NewAdapter(driver, ledCfg.Count, ledLogger)

			gpioCfg := gpio.Config{
				Driver:    opts.GPIODriver,
				PinFormat: opts.GPIOPinFormat,
				FreqHz:    opts.GPIOFreqHz,
			}
			writer, openErr = gpio.New(gpioCfg, pins, logging.GetLogger("gpio"))
			if openErr != nil {
				logger.Error("Failed to open GPIO writer", "error", openErr)
				os.Exit(1)
			}

			if opts.NetworkWait {
				notifier.Status("Waiting for network")
				addr, waitErr := network.WaitForNetwork(ctx, adapter, network.Options{
					Interface: opts.NetworkInterface,
					Interval:  ms(opts.NetworkIntervalMs),
					Logger:    logging.GetLogger("network"),
				})
				if waitErr != nil {
					logger.Info("Network wait cancelled", "error", waitErr)
					return
				}
				logger.Info("Network available", "addr", addr)
			}

			chase := animation.NewChase(uint8(min(max(opts.AnimationIntensity, 0), 255)), ms(opts.AnimationIntervalMs))
			state := device.NewState(adapter, writer, chase, features, pins)
			controller = device.NewController(store, state, logging.GetLogger("device"),
				device.WithEventBus(eventBus),
				device.WithPollInterval(ms(opts.LoopPollIntervalMs)),
				device.WithTick(notifier.Alive),
			)

			apiOpts := &api.Options{
				AuthUsername: opts.AuthUsername,
				AuthPassword: opts.AuthPassword,
				Store:        store,
				Frames:       adapter,
				DriverName:   driver.Name(),
				EventBus:     eventBus,
				Features:     controller.Features,
			}
			if opts.MetricsEnabled {
				apiOpts.PrometheusHandler = metrics.Handler()
			}

			if opts.NATSUrl != "" {
				bridge = nats.NewBridge(opts.NATSUrl, store, eventBus, logging.GetLogger("nats"))
				if startErr := bridge.Start(); startErr != nil {
					logger.Warn("NATS bridge unavailable", "url", opts.NATSUrl, "error", startErr)
				}
				apiOpts.NATSConnected = bridge.IsConnected
			}

			server = api.NewServer(apiOpts)
			go func() {
				if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
					logger.Error("Failed to start HTTP server", "error", startErr)
					os.Exit(1)
				}
			}()

			watcher = config.NewConfigWatcher(opts.Config, config.LoadReloadable, logging.GetLogger("config"))
			watcher.OnReload(func(cfg config.Reloadable) {
				logging.Initialize(cfg.Logging)
				controller.Reload(device.Features{
					IdleAnimation: cfg.Features.IdleAnimation,
					GPIOMirroring: cfg.Features.GPIOMirroring,
				})
				eventBus.Publish(events.ConfigReloadedEvent{
					IdleAnimation: cfg.Features.IdleAnimation,
					GPIOMirroring: cfg.Features.GPIOMirroring,
					LogLevel:      cfg.Logging.Level,
					Timestamp:     time.Now().Format(time.RFC3339),
				})
				logger.Info("Configuration reloaded", "idle_animation", cfg.Features.IdleAnimation, "gpio_mirroring", cfg.Features.GPIOMirroring)
			})
			if _, statErr := os.Stat(opts.Config); statErr == nil {
				if startErr := watcher.Start(); startErr != nil {
					logger.Warn("Config hot reload disabled", "error", startErr)
				}
			}

			notifier.Ready()
			notifier.Status("Running")
			logger.Info("Control loop started", "thing", board.ID, "driver", driver.Name(), "leds", adapter.Len())

			if runErr := controller.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
				logger.Error("Control loop stopped", "error", runErr)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			notifier.Stopping()
			cancel()
			<-loopDone

			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping config watcher", "error", stopErr)
				}
			}
			if server != nil {
				if stopErr := server.Stop(); stopErr != nil {
					logger.Error("Error stopping HTTP server", "error", stopErr)
				}
			}
			if bridge != nil {
				bridge.Stop()
			}
			if c, ok := writer.(gpio.Closer); ok {
				if closeErr := c.Close(); closeErr != nil {
					logger.Warn("Error releasing GPIO pins", "error", closeErr)
				}
			}
			if adapter != nil {
				if closeErr := adapter.Close(); closeErr != nil {
					logger.Warn("Error closing LED driver", "error", closeErr)
				}
			}
		})
	})
	root = cli.Root()
	root.Use = version.Name
	root.Version = version.String()

	cli.Root().AddCommand(cmd.CreateDescribeCmd())
	cli.Root().AddCommand(cmd.CreateDecodeCmd())

	cli.Run()
}
