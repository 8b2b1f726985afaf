// Package metrics exposes the engine's operational counters in
// Prometheus text exposition format: votes ingested and rejected,
// rule fire counts per rule, and the current judge count per status.
package metrics
