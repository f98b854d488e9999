// Package logging provides structured logging with per-module log level configuration.
//
// Output is routed automatically:
//   - systemd journal when journald is reachable (identifier "everloopd")
//   - stdout when a terminal, pipe, or file is connected
//   - an in-memory ring buffer served by GET /api/logs
//
// Initialize once at startup, and again whenever the [logging] table of the
// configuration file is reloaded:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"device": "debug",
//			"http":   "warn",
//		},
//	})
//
// Each package asks for its own module logger:
//
//	logger := logging.GetLogger("led")
//	logger.Debug("Frame written", "driver", "matrixio", "elements", 18)
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	device = "debug"
//	http = "warn"
//
// Viewing logs on the device:
//
//	journalctl -t everloopd -f
//	journalctl -t everloopd MODULE=device
package logging
