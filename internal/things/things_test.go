package things

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/smazurov/everloopd/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func newBoardStore(t *testing.T, gpio bool, opts ...StoreOption) *Store {
	t.Helper()
	d, err := NewBoardDevice(gpio)
	if err != nil {
		t.Fatalf("NewBoardDevice() error: %v", err)
	}
	return NewStore(d, testLogger(), opts...)
}

func TestBoardDefaults(t *testing.T) {
	s := newBoardStore(t, true)

	if s.Bool(PropOn) {
		t.Error("on should default to false")
	}
	if got := s.Number(PropLevel); got != DefaultLevel {
		t.Errorf("level = %v, want %v", got, DefaultLevel)
	}
	if got := s.Text(PropColor); got != DefaultColor {
		t.Errorf("color = %q, want %q", got, DefaultColor)
	}
	for _, pin := range GPIOPins {
		if got := s.Number(GPIOProperty(pin)); got != 0 {
			t.Errorf("%s = %v, want 0", GPIOProperty(pin), got)
		}
	}
}

func TestBoardVariants(t *testing.T) {
	full, err := NewBoardDevice(true)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(full.PropertyNames()); got != 7 {
		t.Errorf("gpio variant has %d properties, want 7", got)
	}

	plain, err := NewBoardDevice(false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := plain.Property("gpio12level"); ok {
		t.Error("animation-only variant should not expose GPIO properties")
	}
	for _, c := range plain.Capabilities {
		if c == MultiLevelSwitch {
			t.Error("animation-only variant should not carry MultiLevelSwitch")
		}
	}
}

func TestDescribe(t *testing.T) {
	d, _ := NewBoardDevice(true)
	desc := d.Describe()

	if desc.ID != "board" || desc.Title != "MATRIX Voice" {
		t.Errorf("identity = %q/%q", desc.ID, desc.Title)
	}

	gpio := desc.Properties["gpio26level"]
	if gpio.Title != "Set Pin IO26" || *gpio.Minimum != 0 || *gpio.Maximum != 255 {
		t.Errorf("gpio26level = %+v", gpio)
	}
	if gpio.Links[0].Href != "/things/board/properties/gpio26level" {
		t.Errorf("href = %q", gpio.Links[0].Href)
	}

	data, err := json.Marshal(desc)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["@context"] != SchemaContext {
		t.Errorf("@context = %v", decoded["@context"])
	}
	on := decoded["properties"].(map[string]any)["on"].(map[string]any)
	if on["@type"] != "OnOffProperty" || on["type"] != "boolean" {
		t.Errorf("on = %v", on)
	}
}

func TestEnqueueIsDeferredUntilUpdate(t *testing.T) {
	s := newBoardStore(t, true)

	if _, err := s.Enqueue(PropOn, BoolValue(true)); err != nil {
		t.Fatal(err)
	}
	if s.Bool(PropOn) {
		t.Fatal("write applied before Update")
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}

	changes := s.Update()
	if len(changes) != 1 || changes[0].Property != PropOn || !changes[0].Value.Bool() {
		t.Fatalf("changes = %+v", changes)
	}
	if !s.Bool(PropOn) {
		t.Error("write not applied by Update")
	}
	if s.Update() != nil {
		t.Error("second Update should report no changes")
	}
}

func TestEnqueueClampsNumbers(t *testing.T) {
	s := newBoardStore(t, true)

	tests := []struct {
		prop string
		in   float64
		want float64
	}{
		{PropLevel, 150, 100},
		{PropLevel, -3, 0},
		{PropLevel, 42, 42},
		{"gpio12level", 300, 255},
		{"gpio25level", -10, 0},
	}

	for _, tt := range tests {
		got, err := s.Enqueue(tt.prop, NumberValue(tt.in))
		if err != nil {
			t.Fatalf("Enqueue(%s, %v) error: %v", tt.prop, tt.in, err)
		}
		if got.Number() != tt.want {
			t.Errorf("Enqueue(%s, %v) = %v, want %v", tt.prop, tt.in, got.Number(), tt.want)
		}
		s.Update()
		if s.Number(tt.prop) != tt.want {
			t.Errorf("%s applied as %v, want %v", tt.prop, s.Number(tt.prop), tt.want)
		}
	}
}

func TestEnqueueErrors(t *testing.T) {
	s := newBoardStore(t, false)

	tests := []struct {
		name  string
		prop  string
		value Value
		code  ErrorCode
	}{
		{"unknown property", "brightness", NumberValue(1), CodeNotFound},
		{"gpio on plain variant", "gpio12level", NumberValue(1), CodeNotFound},
		{"wrong type", PropOn, StringValue("yes"), CodeTypeMismatch},
		{"number for color", PropColor, NumberValue(255), CodeTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Enqueue(tt.prop, tt.value)
			var perr *PropertyError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want *PropertyError", err)
			}
			if perr.Code != tt.code {
				t.Errorf("code = %q, want %q", perr.Code, tt.code)
			}
		})
	}
	if s.Pending() != 0 {
		t.Error("rejected writes were queued")
	}
}

func TestUpdateAppliesInOrder(t *testing.T) {
	s := newBoardStore(t, true)

	_, _ = s.Enqueue(PropColor, StringValue("#ff0000"))
	_, _ = s.Enqueue(PropColor, StringValue("#00ff00"))
	_, _ = s.Enqueue(PropLevel, NumberValue(DefaultLevel))

	changes := s.Update()
	if len(changes) != 2 {
		t.Fatalf("changes = %+v, unchanged level write must not be reported", changes)
	}
	if changes[1].Previous.String() != "#ff0000" || changes[1].Value.String() != "#00ff00" {
		t.Errorf("second change = %+v", changes[1])
	}
	if s.Text(PropColor) != "#00ff00" {
		t.Errorf("color = %q, last write must win", s.Text(PropColor))
	}
}

func TestQueueLimitDropsOldest(t *testing.T) {
	s := newBoardStore(t, true, WithQueueSize(2))

	_, _ = s.Enqueue(PropLevel, NumberValue(10))
	_, _ = s.Enqueue(PropLevel, NumberValue(20))
	_, _ = s.Enqueue(PropColor, StringValue("#000001"))

	if s.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", s.Pending())
	}
	changes := s.Update()
	if len(changes) != 2 || changes[0].Value.Number() != 20 {
		t.Errorf("changes = %+v", changes)
	}
}

func TestUpdatePublishesEvents(t *testing.T) {
	bus := events.New()
	received := make(chan events.PropertyChangedEvent, 1)
	unsub := bus.Subscribe(func(e events.PropertyChangedEvent) { received <- e })
	defer unsub()

	s := newBoardStore(t, true, WithEventBus(bus))
	_, _ = s.Enqueue("gpio27level", NumberValue(64))
	s.Update()

	select {
	case e := <-received:
		if e.Thing != BoardID || e.Property != "gpio27level" || e.Value != 64.0 || e.Previous != 0.0 {
			t.Errorf("event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no PropertyChangedEvent published")
	}
}

func TestSnapshot(t *testing.T) {
	s := newBoardStore(t, false)
	snap := s.Snapshot()

	if snap[PropOn] != false || snap[PropLevel] != 100.0 || snap[PropColor] != "#ffffff" {
		t.Errorf("snapshot = %v", snap)
	}
	if len(snap) != 3 {
		t.Errorf("snapshot has %d entries, want 3", len(snap))
	}
}

func TestValueFrom(t *testing.T) {
	if v, err := ValueFrom(Number, 12.5); err != nil || v.Number() != 12.5 {
		t.Errorf("ValueFrom(number) = %v, %v", v, err)
	}
	if v, err := ValueFrom(Boolean, true); err != nil || !v.Bool() {
		t.Errorf("ValueFrom(boolean) = %v, %v", v, err)
	}
	if _, err := ValueFrom(String, 1.0); err == nil {
		t.Error("ValueFrom(string, 1.0) should fail")
	}
	if _, err := ValueFrom(Boolean, nil); err == nil {
		t.Error("ValueFrom(boolean, nil) should fail")
	}
}

func TestDuplicateProperty(t *testing.T) {
	d, _ := NewDevice("x", "X")
	p := &Property{Name: "on", Type: Boolean}
	if err := d.AddProperty(p, BoolValue(false)); err != nil {
		t.Fatal(err)
	}
	if err := d.AddProperty(&Property{Name: "on", Type: Boolean}, BoolValue(true)); err == nil {
		t.Error("duplicate property accepted")
	}
	if _, err := NewDevice("y", "Y", Capability("Toaster")); err == nil {
		t.Error("unknown capability accepted")
	}
}
