// Package ws streams live judge snapshots to dashboard clients over
// WebSocket.
//
// The Hub owns the fan-out: on every tick it builds the arena snapshot
// once, marshals it once, and pushes the same payload to every
// subscriber. A client that cannot keep up (full send queue) is
// disconnected rather than allowed to stall the broadcast. New clients
// get the current snapshot immediately on connect so a dashboard is
// never empty while waiting for the first tick.
//
// Wire format, identical to GET /api/v1/snapshot wrapped in an
// envelope:
//
//	{"event": "snapshot", "data": {...}}
//
// All origins are accepted at the upgrader; origin policy belongs to
// the reverse proxy in front of the service. The server mounts the hub
// at /ws/stream.
package ws
