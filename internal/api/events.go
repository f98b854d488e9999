package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/everloopd/internal/events"
	"github.com/smazurov/everloopd/internal/things"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Applied property writes, on/off transitions and config reloads",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"property-changed":     events.PropertyChangedEvent{},
		"device-state-changed": events.DeviceStateChangedEvent{},
		"config-reloaded":      events.ConfigReloadedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.PropertyChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DeviceStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ConfigReloadedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// The current state doubles as the connection confirmation
		if err := send.Data(s.currentState()); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

func (s *Server) currentState() events.DeviceStateChangedEvent {
	store := s.options.Store
	ev := events.DeviceStateChangedEvent{
		Thing:     store.Device().ID,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if v, err := store.Get(things.PropOn); err == nil {
		ev.On = v.Bool()
	}
	if v, err := store.Get(things.PropLevel); err == nil {
		ev.Level = int(v.Number())
	}
	if v, err := store.Get(things.PropColor); err == nil {
		ev.Color = v.String()
	}
	return ev
}
