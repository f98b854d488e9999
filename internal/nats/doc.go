// Package nats bridges the board's properties onto a NATS broker so other
// services can drive the ring without going through HTTP.
//
// # Subject Hierarchy
//
//	everloopd.things.{thing}.properties.{property}.set   # write request (broker → daemon)
//	everloopd.things.{thing}.properties.{property}       # applied change (daemon → broker)
//	everloopd.things.{thing}.state                       # on/off transitions (daemon → broker)
//
// Write requests carry {"value": ...}. When the request has a reply subject
// the daemon answers with the value that will be applied, or an error.
// Writes are queued like HTTP writes and applied by the next loop iteration.
//
// The bridge uses core NATS (no JetStream) and degrades gracefully: when the
// broker is unreachable the daemon keeps running and the client reconnects
// in the background.
//
// # Debugging with nats CLI
//
// Watch everything the daemon publishes:
//
//	nats sub "everloopd.>"
//
// Switch the ring on and wait for the acknowledgement:
//
//	nats req everloopd.things.board.properties.on.set '{"value": true}'
package nats
