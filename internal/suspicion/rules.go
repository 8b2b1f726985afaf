package suspicion

import (
	"encoding/json"

	"github.com/arenaguard/arenaguard/internal/signals"
)

// Rule identifies one penalty rule. Identity is the enum; the display
// label lives in String() and is what callers see in triggered_rules.
type Rule int

const (
	RuleFastBiased Rule = iota
	RuleBiasedRepetitiveBattles
	RuleFastRepetitivePrompts
	RuleFastExcessiveTies
	RuleStrongBias
	RuleFastVoting
)

// String returns the canonical rule label.
func (r Rule) String() string {
	switch r {
	case RuleFastBiased:
		return "Fast & Biased"
	case RuleBiasedRepetitiveBattles:
		return "Biased & Repetitive Battles"
	case RuleFastRepetitivePrompts:
		return "Fast & Repetitive Prompts"
	case RuleFastExcessiveTies:
		return "Fast & Excessive Ties"
	case RuleStrongBias:
		return "Strong Bias"
	case RuleFastVoting:
		return "Fast Voting"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the rule as its label.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// scoredRule binds a rule to its penalty and matching condition.
type scoredRule struct {
	rule    Rule
	penalty float64
	match   func(signals.Snapshot) bool
}

// combinationRules pair two signals and carry the higher penalties.
// All of them are tested on every evaluation; several can fire from
// the same vote since they test different signal pairs.
var combinationRules = []scoredRule{
	{RuleFastBiased, 4, func(s signals.Snapshot) bool { return s.FastVote && s.StrongBias }},
	{RuleBiasedRepetitiveBattles, 3, func(s signals.Snapshot) bool { return s.StrongBias && s.RepetitiveBattle }},
	{RuleFastRepetitivePrompts, 2, func(s signals.Snapshot) bool { return s.FastVote && s.RepetitivePrompt }},
	{RuleFastExcessiveTies, 2, func(s signals.Snapshot) bool { return s.FastVote && s.ExcessiveTies }},
}

// fallbackRules fire only when nothing else has fired this
// evaluation, in order — so at most one of them ever applies.
var fallbackRules = []scoredRule{
	{RuleStrongBias, 1, func(s signals.Snapshot) bool { return s.StrongBias }},
	{RuleFastVoting, 1, func(s signals.Snapshot) bool { return s.FastVote }},
}

// applyRules decays score, then runs the two-phase rule table against
// sig. It returns the new score and the rules that fired, replacing
// (never accumulating onto) any previous triggered set.
func applyRules(score float64, sig signals.Snapshot) (float64, []Rule) {
	score *= DecayFactor

	var fired []Rule
	for _, r := range combinationRules {
		if r.match(sig) {
			score += r.penalty
			fired = append(fired, r.rule)
		}
	}

	// Individual signals are a fallback, not an addition: they only
	// count when no combination explained the behavior.
	if len(fired) == 0 {
		for _, r := range fallbackRules {
			if r.match(sig) {
				score += r.penalty
				fired = append(fired, r.rule)
				break
			}
		}
	}

	if score < 0 {
		score = 0
	}
	return score, fired
}
