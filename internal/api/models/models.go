// Package models holds the request and response bodies of the HTTP API.
package models

import (
	"github.com/smazurov/everloopd/internal/frame"
	"github.com/smazurov/everloopd/internal/metrics"
	"github.com/smazurov/everloopd/internal/things"
	"github.com/smazurov/everloopd/internal/version"
)

// HealthData reports liveness.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

// HealthResponse wraps HealthData.
type HealthResponse struct {
	Body HealthData
}

// VersionResponse wraps build metadata.
type VersionResponse struct {
	Body version.Info
}

// ThingPath addresses a thing.
type ThingPath struct {
	Thing string `path:"thing" example:"board" doc:"Thing identifier"`
}

// PropertyPath addresses a property of a thing.
type PropertyPath struct {
	Thing    string `path:"thing" example:"board" doc:"Thing identifier"`
	Property string `path:"property" example:"color" doc:"Property name"`
}

// ThingListResponse lists every thing description.
type ThingListResponse struct {
	Body []things.Description
}

// ThingResponse is one thing description.
type ThingResponse struct {
	Body things.Description
}

// PropertiesResponse maps property names to values.
type PropertiesResponse struct {
	Body map[string]any
}

// PropertyRequest carries {"<property>": value}.
type PropertyRequest struct {
	Thing    string `path:"thing" example:"board" doc:"Thing identifier"`
	Property string `path:"property" example:"color" doc:"Property name"`
	Body     map[string]any
}

// PropertyResponse carries {"<property>": value}.
type PropertyResponse struct {
	Body map[string]any
}

// FrameData is the last frame sent to the ring.
type FrameData struct {
	Driver   string          `json:"driver" example:"matrixio" doc:"Active LED driver"`
	Count    int             `json:"count" example:"18" doc:"Number of elements"`
	Elements []frame.Element `json:"elements" doc:"Elements in ring order"`
	Error    string          `json:"error,omitempty" doc:"Error of the last write, if it failed"`
}

// FrameResponse wraps FrameData.
type FrameResponse struct {
	Body FrameData
}

// StatusData summarizes the loop.
type StatusData struct {
	Metrics       metrics.Snapshot `json:"metrics" doc:"Loop counters"`
	IdleAnimation bool             `json:"idle_animation" doc:"Idle animation enabled"`
	GPIOMirroring bool             `json:"gpio_mirroring" doc:"GPIO mirroring enabled"`
	NATSConnected bool             `json:"nats_connected" doc:"Whether the NATS bridge is connected"`
}

// StatusResponse wraps StatusData.
type StatusResponse struct {
	Body StatusData
}

// LogsInput selects how many log entries to return.
type LogsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"500" default:"100" doc:"Number of most recent entries"`
}

// LogEntry is one buffered log record.
type LogEntry struct {
	Timestamp  string         `json:"timestamp" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"device" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

// LogsResponse lists buffered log entries, oldest first.
type LogsResponse struct {
	Body struct {
		Entries []LogEntry `json:"entries" doc:"Log entries"`
	}
}
