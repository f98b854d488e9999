// Package systemd reports readiness and liveness to the service manager.
package systemd

import (
	"log/slog"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// sdNotify is replaced in tests.
var sdNotify = daemon.SdNotify

// watchdogEnabled is replaced in tests.
var watchdogEnabled = daemon.SdWatchdogEnabled

// Notifier sends sd_notify messages. Outside systemd every call is a no-op.
type Notifier struct {
	logger *slog.Logger

	mu       sync.Mutex
	interval time.Duration
	lastPing time.Time
}

// NewNotifier reads WATCHDOG_USEC to decide how often Alive pings.
func NewNotifier(logger *slog.Logger) *Notifier {
	n := &Notifier{logger: logger}
	interval, err := watchdogEnabled(false)
	switch {
	case err != nil:
		logger.Warn("Invalid watchdog settings", "error", err)
	case interval > 0:
		// Ping at half the timeout.
		n.interval = interval / 2
		logger.Info("Systemd watchdog enabled", "timeout", interval)
	}
	return n
}

// Ready reports start-up completion.
func (n *Notifier) Ready() {
	n.send(daemon.SdNotifyReady)
}

// Stopping reports that shutdown began.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl.
func (n *Notifier) Status(status string) {
	n.send("STATUS=" + status)
}

// Alive pings the watchdog, at most once per interval. It is called after
// every loop iteration so a stuck loop stops the pings.
func (n *Notifier) Alive() {
	n.mu.Lock()
	if n.interval == 0 || time.Since(n.lastPing) < n.interval {
		n.mu.Unlock()
		return
	}
	n.lastPing = time.Now()
	n.mu.Unlock()

	n.send(daemon.SdNotifyWatchdog)
}

func (n *Notifier) send(state string) {
	sent, err := sdNotify(false, state)
	if err != nil {
		n.logger.Debug("sd_notify failed", "state", state, "error", err)
		return
	}
	if !sent {
		return
	}
	n.logger.Debug("sd_notify sent", "state", state)
}
