package nats

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smazurov/everloopd/internal/events"
	"github.com/smazurov/everloopd/internal/things"
)

// PropertyWriter queues property writes. *things.Store implements it.
type PropertyWriter interface {
	Device() *things.Device
	Enqueue(name string, v things.Value) (things.Value, error)
}

// publisher is the part of *nats.Conn used for outbound messages.
type publisher interface {
	Publish(subject string, data []byte) error
}

// Bridge connects the property store and the event bus to a NATS broker.
type Bridge struct {
	url    string
	store  PropertyWriter
	bus    *events.Bus
	logger *slog.Logger

	mu        sync.RWMutex
	conn      *nats.Conn
	pub       publisher
	sub       *nats.Subscription
	unsubs    []func()
	connected bool
}

// NewBridge creates a bridge. Nothing happens until Start.
func NewBridge(url string, store PropertyWriter, bus *events.Bus, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		url:    url,
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

// Start connects, subscribes to write requests, and forwards bus events.
// A connection failure is returned; the daemon keeps running without NATS.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := nats.Connect(b.url,
		nats.Name("everloopd"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			b.setConnected(false)
			if err != nil {
				b.logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			b.setConnected(true)
			b.logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		b.logger.Warn("Failed to connect to NATS, running without broker", "url", b.url, "error", err)
		return err
	}

	thing := b.store.Device().ID
	sub, err := conn.Subscribe(SubjectPropertySet(thing, "*"), func(msg *nats.Msg) {
		reply := b.handleSet(msg.Subject, msg.Data)
		if msg.Reply == "" {
			return
		}
		data, err := reply.Marshal()
		if err != nil {
			return
		}
		if err := msg.Respond(data); err != nil {
			b.logger.Debug("Failed to answer set request", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		conn.Close()
		return err
	}

	b.conn = conn
	b.pub = conn
	b.sub = sub
	b.connected = true
	b.subscribeEventsLocked()
	b.logger.Info("NATS bridge connected", "url", b.url, "subject", SubjectPropertySet(thing, "*"))
	return nil
}

func (b *Bridge) subscribeEventsLocked() {
	if b.bus == nil {
		return
	}
	b.unsubs = append(b.unsubs,
		b.bus.Subscribe(func(e events.PropertyChangedEvent) {
			b.publish(SubjectProperty(e.Thing, e.Property), PropertyMessage{
				Thing:     e.Thing,
				Property:  e.Property,
				Value:     e.Value,
				Previous:  e.Previous,
				Timestamp: e.Timestamp,
			})
		}),
		b.bus.Subscribe(func(e events.DeviceStateChangedEvent) {
			b.publish(SubjectState(e.Thing), StateMessage{
				Thing:     e.Thing,
				On:        e.On,
				Level:     e.Level,
				Color:     e.Color,
				Timestamp: e.Timestamp,
			})
		}),
	)
}

// handleSet turns a write request into a queued store write.
func (b *Bridge) handleSet(subject string, data []byte) ReplyMessage {
	device := b.store.Device()
	name, ok := propertyFromSetSubject(device.ID, subject)
	if !ok {
		return ReplyMessage{Error: "malformed subject"}
	}
	reply := ReplyMessage{Property: name}

	prop, ok := device.Property(name)
	if !ok {
		reply.Error, reply.Code = "unknown property", string(things.CodeNotFound)
		return reply
	}

	msg, err := UnmarshalSet(data)
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	value, err := things.ValueFrom(prop.Type, msg.Value)
	if err != nil {
		reply.Error, reply.Code = err.Error(), string(things.CodeTypeMismatch)
		return reply
	}

	applied, err := b.store.Enqueue(name, value)
	if err != nil {
		reply.Error = err.Error()
		var perr *things.PropertyError
		if errors.As(err, &perr) {
			reply.Code = string(perr.Code)
		}
		return reply
	}

	b.logger.Debug("NATS property write queued", "property", name, "value", applied.Interface())
	reply.Value = applied.Interface()
	return reply
}

type marshaler interface {
	Marshal() ([]byte, error)
}

// publish sends m. No-op if not connected.
func (b *Bridge) publish(subject string, m marshaler) {
	b.mu.RLock()
	pub := b.pub
	connected := b.connected
	b.mu.RUnlock()

	if pub == nil || !connected {
		return
	}

	data, err := m.Marshal()
	if err != nil {
		b.logger.Warn("Failed to marshal NATS message", "subject", subject, "error", err)
		return
	}
	if err := pub.Publish(subject, data); err != nil {
		b.logger.Warn("Failed to publish NATS message", "subject", subject, "error", err)
	}
}

func (b *Bridge) setConnected(v bool) {
	b.mu.Lock()
	b.connected = v
	b.mu.Unlock()
}

// IsConnected returns true if connected to NATS.
func (b *Bridge) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected && b.pub != nil
}

// Stop unsubscribes and closes the connection.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil

	if b.sub != nil {
		_ = b.sub.Unsubscribe()
		b.sub = nil
	}
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	b.pub = nil
	b.connected = false
	b.logger.Debug("NATS bridge stopped")
}
