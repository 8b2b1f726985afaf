// Package history holds each judge's append-only vote log, the
// engine's only durable state. Append is the sole sequence mutator;
// events are never removed or reordered, because the recency-based
// signals depend on exact arrival order and suspicion analysis is
// cumulative for the life of the process.
package history
