// Package notify watches judge status transitions and delivers
// webhook notifications when a judge escalates past the configured
// floor. Delivery is asynchronous with bounded exponential backoff,
// so it never blocks vote recording.
package notify
