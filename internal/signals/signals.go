package signals

import (
	"time"

	"github.com/arenaguard/arenaguard/internal/vote"
)

// Detection thresholds.
const (
	// FastVoteWithin is the gap between consecutive votes below which
	// a vote counts as suspiciously fast.
	FastVoteWithin = 3 * time.Second

	// BiasWindow is how many trailing votes the bias check examines.
	BiasWindow = 5

	// BattleRepeatMax is the per-pair vote count above which battle
	// targeting is flagged.
	BattleRepeatMax = 5

	// DiversityMin is the distinct-prompt ratio below which prompts
	// count as repetitive.
	DiversityMin = 0.3

	// TieRateMax is the tie ratio above which tie abuse is flagged.
	TieRateMax = 0.8

	// MinSamples is the history length both unbounded-window checks
	// require before they can fire.
	MinSamples = 5
)

// Snapshot holds all five indicators computed over one history state.
type Snapshot struct {
	FastVote         bool
	StrongBias       bool
	RepetitiveBattle bool
	RepetitivePrompt bool
	ExcessiveTies    bool
}

// Compute evaluates every calculator against hist.
func Compute(hist []vote.Event) Snapshot {
	return Snapshot{
		FastVote:         FastVote(hist),
		StrongBias:       StrongBias(hist),
		RepetitiveBattle: RepetitiveBattle(hist),
		RepetitivePrompt: RepetitivePrompt(hist),
		ExcessiveTies:    ExcessiveTies(hist),
	}
}

// FastVote reports whether the last two votes arrived less than
// FastVoteWithin apart. False with fewer than two events.
func FastVote(hist []vote.Event) bool {
	if len(hist) < 2 {
		return false
	}
	last, prev := hist[len(hist)-1], hist[len(hist)-2]
	return last.Timestamp.Sub(prev.Timestamp) < FastVoteWithin
}

// StrongBias reports whether the last BiasWindow votes unanimously
// picked the same item. A unanimous run of ties does not count.
// False when fewer than BiasWindow votes exist.
func StrongBias(hist []vote.Event) bool {
	if len(hist) < BiasWindow {
		return false
	}
	window := hist[len(hist)-BiasWindow:]
	first := window[0].Winner
	if !first.IsItem() {
		return false
	}
	for _, ev := range window[1:] {
		if ev.Winner != first {
			return false
		}
	}
	return true
}

// RepetitiveBattle reports whether any single battle pair has been
// voted on more than BattleRepeatMax times across the whole history.
func RepetitiveBattle(hist []vote.Event) bool {
	counts := make(map[string]int)
	for _, ev := range hist {
		counts[ev.Pair.Key()]++
		if counts[ev.Pair.Key()] > BattleRepeatMax {
			return true
		}
	}
	return false
}

// RepetitivePrompt reports whether prompt diversity (distinct prompts
// over total votes) fell below DiversityMin. Requires more than
// MinSamples votes.
func RepetitivePrompt(hist []vote.Event) bool {
	if len(hist) <= MinSamples {
		return false
	}
	distinct := make(map[string]struct{}, len(hist))
	for _, ev := range hist {
		distinct[ev.Prompt] = struct{}{}
	}
	diversity := float64(len(distinct)) / float64(len(hist))
	return diversity < DiversityMin
}

// ExcessiveTies reports whether the tie rate over the whole history
// exceeds TieRateMax. Requires more than MinSamples votes.
func ExcessiveTies(hist []vote.Event) bool {
	if len(hist) <= MinSamples {
		return false
	}
	var ties int
	for _, ev := range hist {
		if ev.Winner.IsTie() {
			ties++
		}
	}
	rate := float64(ties) / float64(len(hist))
	return rate > TieRateMax
}
