package things

import (
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/everloopd/internal/events"
	"github.com/smazurov/everloopd/internal/metrics"
)

// DefaultQueueSize bounds the number of writes waiting for the next Update.
const DefaultQueueSize = 256

// Change is one property write applied by Update.
type Change struct {
	Property string
	Previous Value
	Value    Value
}

type pendingWrite struct {
	name  string
	value Value
}

// Store holds the live state of one device. Remote writers call Enqueue;
// the sync loop calls Update once per iteration to apply them, which keeps
// the loop as the only writer of applied values. Reads are safe from any
// goroutine.
type Store struct {
	device *Device
	bus    *events.Bus
	logger *slog.Logger
	limit  int

	mu      sync.RWMutex
	pending []pendingWrite
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithQueueSize overrides DefaultQueueSize.
func WithQueueSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithEventBus publishes a PropertyChangedEvent for every applied change.
func WithEventBus(bus *events.Bus) StoreOption {
	return func(s *Store) { s.bus = bus }
}

// NewStore wraps device. The device must not be modified afterwards.
func NewStore(device *Device, logger *slog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		device: device,
		logger: logger,
		limit:  DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Device returns the device the store serves.
func (s *Store) Device() *Device {
	return s.device
}

// Enqueue validates a write and queues it for the next Update. It returns
// the value that will be applied, after clamping. When the queue is full
// the oldest pending write is dropped.
func (s *Store) Enqueue(name string, v Value) (Value, error) {
	p, ok := s.device.Property(name)
	if !ok {
		return Value{}, notFound(name)
	}
	if p.ReadOnly {
		return Value{}, &PropertyError{Code: CodeReadOnly, Property: name}
	}
	coerced, err := p.coerce(v)
	if err != nil {
		return Value{}, err
	}

	s.mu.Lock()
	if len(s.pending) >= s.limit {
		dropped := s.pending[0]
		s.pending = s.pending[1:]
		s.logger.Warn("Property write queue full, dropping oldest write", "property", dropped.name)
	}
	s.pending = append(s.pending, pendingWrite{name: name, value: coerced})
	s.mu.Unlock()

	s.logger.Debug("Property write queued", "property", name, "value", coerced.Interface())
	return coerced, nil
}

// Pending returns the number of queued writes.
func (s *Store) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// Update applies every queued write in arrival order and returns those that
// changed a value. Writes of an unchanged value are applied silently.
func (s *Store) Update() []Change {
	s.mu.Lock()
	queue := s.pending
	s.pending = nil

	var changes []Change
	for _, w := range queue {
		p, _ := s.device.Property(w.name)
		if p.value == w.value {
			continue
		}
		changes = append(changes, Change{Property: w.name, Previous: p.value, Value: w.value})
		p.value = w.value
	}
	s.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, c := range changes {
		metrics.IncPropertyWrites(c.Property)
		s.logger.Debug("Property updated", "property", c.Property, "previous", c.Previous.Interface(), "value", c.Value.Interface())
		if s.bus != nil {
			s.bus.Publish(events.PropertyChangedEvent{
				Thing:     s.device.ID,
				Property:  c.Property,
				Value:     c.Value.Interface(),
				Previous:  c.Previous.Interface(),
				Timestamp: now,
			})
		}
	}
	return changes
}

// Get returns the applied value of a property.
func (s *Store) Get(name string) (Value, error) {
	p, ok := s.device.Property(name)
	if !ok {
		return Value{}, notFound(name)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return p.value, nil
}

// Bool returns a boolean property, or false when missing.
func (s *Store) Bool(name string) bool {
	v, _ := s.Get(name)
	return v.Bool()
}

// Number returns a number property, or 0 when missing.
func (s *Store) Number(name string) float64 {
	v, _ := s.Get(name)
	return v.Number()
}

// Text returns a string property, or "" when missing.
func (s *Store) Text(name string) string {
	v, err := s.Get(name)
	if err != nil || v.Kind() != String {
		return ""
	}
	return v.String()
}

// Snapshot returns every applied value keyed by property name.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.device.properties))
	for _, p := range s.device.properties {
		out[p.Name] = p.value.Interface()
	}
	return out
}
