package nats

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/everloopd/internal/events"
	"github.com/smazurov/everloopd/internal/things"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestBridge(t *testing.T, bus *events.Bus) (*Bridge, *things.Store) {
	t.Helper()
	dev, err := things.NewBoardDevice(true)
	if err != nil {
		t.Fatal(err)
	}
	store := things.NewStore(dev, testLogger())
	return NewBridge("nats://127.0.0.1:1", store, bus, testLogger()), store
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs map[string][]byte
	got  chan string
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	p.msgs[subject] = data
	p.mu.Unlock()
	p.got <- subject
	return nil
}

func TestSubjects(t *testing.T) {
	if got := SubjectPropertySet("board", "on"); got != "everloopd.things.board.properties.on.set" {
		t.Errorf("SubjectPropertySet = %q", got)
	}
	if got := SubjectState("board"); got != "everloopd.things.board.state" {
		t.Errorf("SubjectState = %q", got)
	}

	tests := []struct {
		subject string
		want    string
		ok      bool
	}{
		{"everloopd.things.board.properties.color.set", "color", true},
		{"everloopd.things.board.properties.color", "", false},
		{"everloopd.things.other.properties.color.set", "", false},
		{"everloopd.things.board.properties..set", "", false},
		{"everloopd.things.board.properties.a.b.set", "", false},
	}
	for _, tt := range tests {
		got, ok := propertyFromSetSubject("board", tt.subject)
		if got != tt.want || ok != tt.ok {
			t.Errorf("propertyFromSetSubject(%q) = %q, %v", tt.subject, got, ok)
		}
	}
}

func TestHandleSet(t *testing.T) {
	b, store := newTestBridge(t, nil)

	tests := []struct {
		name      string
		subject   string
		data      string
		wantValue any
		wantCode  string
		wantErr   bool
	}{
		{"switch on", SubjectPropertySet("board", "on"), `{"value": true}`, true, "", false},
		{"clamped level", SubjectPropertySet("board", "level"), `{"value": 140}`, 100.0, "", false},
		{"color", SubjectPropertySet("board", "color"), `{"value": "#ff8000"}`, "#ff8000", "", false},
		{"unknown property", SubjectPropertySet("board", "volume"), `{"value": 1}`, nil, "not_found", true},
		{"wrong type", SubjectPropertySet("board", "on"), `{"value": "yes"}`, nil, "type_mismatch", true},
		{"bad json", SubjectPropertySet("board", "on"), `{`, nil, "", true},
		{"bad subject", "everloopd.things.board.state", `{}`, nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := b.handleSet(tt.subject, []byte(tt.data))
			if tt.wantErr {
				if reply.Error == "" {
					t.Fatalf("reply = %+v, want error", reply)
				}
				if reply.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", reply.Code, tt.wantCode)
				}
				return
			}
			if reply.Error != "" {
				t.Fatalf("unexpected error: %s", reply.Error)
			}
			if reply.Value != tt.wantValue {
				t.Errorf("value = %#v, want %#v", reply.Value, tt.wantValue)
			}
		})
	}

	if store.Bool(things.PropOn) {
		t.Error("NATS writes must wait for the loop")
	}
	store.Update()
	if !store.Bool(things.PropOn) || store.Number(things.PropLevel) != 100 || store.Text(things.PropColor) != "#ff8000" {
		t.Errorf("applied snapshot = %v", store.Snapshot())
	}
}

func TestEventsArePublished(t *testing.T) {
	bus := events.New()
	b, _ := newTestBridge(t, bus)

	pub := &recordingPublisher{msgs: make(map[string][]byte), got: make(chan string, 4)}
	b.mu.Lock()
	b.pub = pub
	b.connected = true
	b.subscribeEventsLocked()
	b.mu.Unlock()
	defer b.Stop()

	bus.Publish(events.DeviceStateChangedEvent{Thing: "board", On: true, Level: 80, Color: "#00ff00"})

	select {
	case subject := <-pub.got:
		if subject != SubjectState("board") {
			t.Fatalf("published to %q", subject)
		}
	case <-time.After(time.Second):
		t.Fatal("nothing published")
	}

	pub.mu.Lock()
	var msg StateMessage
	err := json.Unmarshal(pub.msgs[SubjectState("board")], &msg)
	pub.mu.Unlock()
	if err != nil {
		t.Fatal(err)
	}
	if !msg.On || msg.Level != 80 || msg.Color != "#00ff00" {
		t.Errorf("state message = %+v", msg)
	}
}

func TestBridgeGracefulDegradation(t *testing.T) {
	b, _ := newTestBridge(t, events.New())

	if err := b.Start(); err == nil {
		t.Error("Start should fail without a broker")
	}
	if b.IsConnected() {
		t.Error("bridge should not be connected")
	}

	// No-op without a connection.
	b.publish(SubjectState("board"), StateMessage{Thing: "board"})
	b.Stop()
}
