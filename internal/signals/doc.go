// Package signals derives boolean behavioral indicators from a
// judge's vote history. Every calculator is a pure function of the
// history slice; nothing here mutates state or caches across calls —
// signals are recomputed from scratch on each evaluation.
//
// The windows are deliberately asymmetric: fast-vote looks at the last
// two events and strong-bias at the last five, while tie-rate and
// prompt diversity run over the entire history. Momentary bursts and
// long-run habits are scored on different horizons.
package signals
