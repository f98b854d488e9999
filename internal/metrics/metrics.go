// Package metrics provides Prometheus metrics for the sync loop and actuators.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "everloopd"

var (
	loopIterations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loop",
		Name:      "iterations_total",
		Help:      "Completed sync loop iterations",
	})

	loopPanics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loop",
		Name:      "panics_total",
		Help:      "Sync loop iterations aborted by a recovered panic",
	})

	loopStepSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "loop",
		Name:      "step_seconds",
		Help:      "Duration of one sync loop iteration",
		Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
	})

	frameWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "led",
		Name:      "frame_writes_total",
		Help:      "Frames written to the LED driver",
	}, []string{"driver", "result"})

	deviceOn = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "on",
		Help:      "Whether the light is switched on (1) or off (0)",
	})

	deviceLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "level_percent",
		Help:      "Current brightness level",
	})

	gpioLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "gpio",
		Name:      "level",
		Help:      "Last analog value written to a pin",
	}, []string{"pin"})

	gpioErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gpio",
		Name:      "write_errors_total",
		Help:      "Failed analog pin writes",
	}, []string{"pin"})

	propertyWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "things",
		Name:      "property_writes_total",
		Help:      "Property writes applied by the sync loop",
	}, []string{"property"})

	// Local snapshot for the status endpoint.
	snapshot   Snapshot
	snapshotMu sync.RWMutex
)

// Snapshot holds the latest values of the device gauges.
type Snapshot struct {
	Iterations  uint64 `json:"iterations" doc:"Completed sync loop iterations"`
	FrameWrites uint64 `json:"frame_writes" doc:"Successful LED frame writes"`
	FrameErrors uint64 `json:"frame_errors" doc:"Failed LED frame writes"`
	On          bool   `json:"on" doc:"Whether the light is on"`
	Level       int    `json:"level" doc:"Brightness level"`
}

// IncLoopIterations records one completed iteration and its duration.
func IncLoopIterations(seconds float64) {
	loopIterations.Inc()
	loopStepSeconds.Observe(seconds)
	updateSnapshot(func(s *Snapshot) { s.Iterations++ })
}

// IncLoopPanics records a recovered panic in the loop.
func IncLoopPanics() {
	loopPanics.Inc()
}

// RecordFrameWrite records the outcome of one LED driver write.
func RecordFrameWrite(driver string, err error) {
	if err != nil {
		frameWrites.WithLabelValues(driver, "error").Inc()
		updateSnapshot(func(s *Snapshot) { s.FrameErrors++ })
		return
	}
	frameWrites.WithLabelValues(driver, "ok").Inc()
	updateSnapshot(func(s *Snapshot) { s.FrameWrites++ })
}

// SetDeviceState sets the on and level gauges.
func SetDeviceState(on bool, level int) {
	v := 0.0
	if on {
		v = 1
	}
	deviceOn.Set(v)
	deviceLevel.Set(float64(level))
	updateSnapshot(func(s *Snapshot) {
		s.On = on
		s.Level = level
	})
}

// SetGPIOLevel records the value written to a pin.
func SetGPIOLevel(pin int, value int) {
	gpioLevel.WithLabelValues(strconv.Itoa(pin)).Set(float64(value))
}

// IncGPIOErrors records a failed pin write.
func IncGPIOErrors(pin int) {
	gpioErrors.WithLabelValues(strconv.Itoa(pin)).Inc()
}

// IncPropertyWrites records an applied property write.
func IncPropertyWrites(property string) {
	propertyWrites.WithLabelValues(property).Inc()
}

// Current returns a copy of the latest snapshot.
func Current() Snapshot {
	snapshotMu.RLock()
	defer snapshotMu.RUnlock()
	return snapshot
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func updateSnapshot(fn func(*Snapshot)) {
	snapshotMu.Lock()
	fn(&snapshot)
	snapshotMu.Unlock()
}
