package nats

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SubjectPrefix is the root of every subject the daemon uses.
const SubjectPrefix = "everloopd.things"

// SubjectPropertySet returns the subject write requests arrive on.
func SubjectPropertySet(thing, property string) string {
	return fmt.Sprintf("%s.%s.properties.%s.set", SubjectPrefix, thing, property)
}

// SubjectProperty returns the subject applied changes are published to.
func SubjectProperty(thing, property string) string {
	return fmt.Sprintf("%s.%s.properties.%s", SubjectPrefix, thing, property)
}

// SubjectState returns the subject on/off transitions are published to.
func SubjectState(thing string) string {
	return fmt.Sprintf("%s.%s.state", SubjectPrefix, thing)
}

// propertyFromSetSubject extracts the property name from a set subject.
func propertyFromSetSubject(thing, subject string) (string, bool) {
	prefix := SubjectPrefix + "." + thing + ".properties."
	if !strings.HasPrefix(subject, prefix) || !strings.HasSuffix(subject, ".set") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(subject, prefix), ".set")
	if name == "" || strings.Contains(name, ".") {
		return "", false
	}
	return name, true
}

// SetMessage is a write request.
type SetMessage struct {
	Value any `json:"value"`
}

// UnmarshalSet deserializes a write request.
func UnmarshalSet(data []byte) (SetMessage, error) {
	var m SetMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("invalid set message: %w", err)
	}
	return m, nil
}

// ReplyMessage answers a write request.
type ReplyMessage struct {
	Property string `json:"property"`
	Value    any    `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

// Marshal serializes the message to JSON.
func (m ReplyMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// PropertyMessage announces an applied change.
type PropertyMessage struct {
	Thing     string `json:"thing"`
	Property  string `json:"property"`
	Value     any    `json:"value"`
	Previous  any    `json:"previous"`
	Timestamp string `json:"timestamp"`
}

// Marshal serializes the message to JSON.
func (m PropertyMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// StateMessage announces an on/off transition.
type StateMessage struct {
	Thing     string `json:"thing"`
	On        bool   `json:"on"`
	Level     int    `json:"level"`
	Color     string `json:"color"`
	Timestamp string `json:"timestamp"`
}

// Marshal serializes the message to JSON.
func (m StateMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}
