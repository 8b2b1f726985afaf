// Package vote defines the immutable vote event model: the unit the
// suspicion engine consumes. A vote records one judge decision on a
// canonicalized battle pair, with the winner drawn from a closed set.
// Validation happens at ingestion so downstream calculators never see
// an unknown winner value.
package vote
