package suspicion

// Score mechanics. The score starts at 0, is multiplied by
// DecayFactor before each evaluation, and only ever moves up through
// rule penalties.
const (
	// DecayFactor is applied to the score once per evaluation,
	// rewarding continued unflagged activity.
	DecayFactor = 0.9

	// MinHistory is how many votes a judge needs before evaluations
	// run at all. Below it, a recorded vote changes nothing.
	MinHistory = 3
)

// Thresholds that map a score to a trust status.
const (
	ThresholdFlagged    = 10.0
	ThresholdSuspicious = 5.0
)

// Status is the discrete trust classification of a judge. It is
// always derived from the score, never set directly.
type Status string

const (
	StatusNormal     Status = "normal"
	StatusSuspicious Status = "suspicious"
	StatusFlagged    Status = "flagged"
)

// Classify maps a score to its status. There is no hysteresis — a
// judge drops back the moment decay carries the score below a
// boundary.
func Classify(score float64) Status {
	switch {
	case score >= ThresholdFlagged:
		return StatusFlagged
	case score >= ThresholdSuspicious:
		return StatusSuspicious
	default:
		return StatusNormal
	}
}

// rank orders statuses by severity for transition comparisons.
func (s Status) rank() int {
	switch s {
	case StatusFlagged:
		return 2
	case StatusSuspicious:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as other.
func (s Status) AtLeast(other Status) bool {
	return s.rank() >= other.rank()
}
