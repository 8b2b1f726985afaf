// Package api implements the JSON HTTP surface: vote intake for the
// suspicion engine plus read endpoints for judges, flags, and the
// arena snapshot the WebSocket hub broadcasts.
package api
