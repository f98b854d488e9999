package systemd

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

func stub(t *testing.T, watchdog time.Duration) *[]string {
	t.Helper()
	var sent []string
	origNotify, origWatchdog := sdNotify, watchdogEnabled
	sdNotify = func(_ bool, state string) (bool, error) {
		sent = append(sent, state)
		return true, nil
	}
	watchdogEnabled = func(bool) (time.Duration, error) { return watchdog, nil }
	t.Cleanup(func() { sdNotify, watchdogEnabled = origNotify, origWatchdog })
	return &sent
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestReadyAndStopping(t *testing.T) {
	sent := stub(t, 0)
	n := NewNotifier(testLogger())

	n.Ready()
	n.Status("rendering")
	n.Stopping()

	want := []string{daemon.SdNotifyReady, "STATUS=rendering", daemon.SdNotifyStopping}
	if len(*sent) != len(want) {
		t.Fatalf("sent = %v, want %v", *sent, want)
	}
	for i := range want {
		if (*sent)[i] != want[i] {
			t.Errorf("sent[%d] = %q, want %q", i, (*sent)[i], want[i])
		}
	}
}

func TestAliveWithoutWatchdog(t *testing.T) {
	sent := stub(t, 0)
	n := NewNotifier(testLogger())
	n.Alive()
	if len(*sent) != 0 {
		t.Errorf("sent = %v, want nothing", *sent)
	}
}

func TestAliveIsRateLimited(t *testing.T) {
	sent := stub(t, time.Hour)
	n := NewNotifier(testLogger())

	for range 5 {
		n.Alive()
	}
	if len(*sent) != 1 || (*sent)[0] != daemon.SdNotifyWatchdog {
		t.Errorf("sent = %v, want one watchdog ping", *sent)
	}
}
