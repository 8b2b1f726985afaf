// Package suspicion is the scoring engine that assigns each judge a
// running trust score. Every recorded vote decays the judge's score,
// recomputes behavioral signals over the full history, applies a
// prioritized rule table, and classifies the result into a discrete
// status. Evaluations are serialized per judge; different judges are
// fully independent.
package suspicion
