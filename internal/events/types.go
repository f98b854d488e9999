package events

// Event type constants for kelindar/event.
const (
	TypePropertyChanged uint32 = iota + 1
	TypeDeviceStateChanged
	TypeLogEntry
	TypeConfigReloaded
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// PropertyChangedEvent is published when the sync loop applies a property write.
type PropertyChangedEvent struct {
	Thing     string `json:"thing" example:"board" doc:"Thing identifier"`
	Property  string `json:"property" example:"color" doc:"Property name"`
	Value     any    `json:"value" doc:"New property value"`
	Previous  any    `json:"previous" doc:"Value before the write"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Time the write was applied"`
}

// Type returns the event type identifier for PropertyChangedEvent.
func (e PropertyChangedEvent) Type() uint32 { return TypePropertyChanged }

// DeviceStateChangedEvent is published once per flip of the on property.
type DeviceStateChangedEvent struct {
	Thing     string `json:"thing" example:"board" doc:"Thing identifier"`
	On        bool   `json:"on" example:"true" doc:"Whether the light is on"`
	Level     int    `json:"level" example:"100" doc:"Brightness level"`
	Color     string `json:"color" example:"#ffffff" doc:"Configured color"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceStateChangedEvent.
func (e DeviceStateChangedEvent) Type() uint32 { return TypeDeviceStateChanged }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2026-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"device" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// ConfigReloadedEvent is published after the config file was re-read.
type ConfigReloadedEvent struct {
	IdleAnimation bool   `json:"idle_animation" doc:"Idle animation enabled"`
	GPIOMirroring bool   `json:"gpio_mirroring" doc:"GPIO mirroring enabled"`
	LogLevel      string `json:"log_level" example:"info" doc:"Global log level"`
	Timestamp     string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Reload timestamp"`
}

// Type returns the event type identifier for ConfigReloadedEvent.
func (e ConfigReloadedEvent) Type() uint32 { return TypeConfigReloaded }
