package signals

import (
	"fmt"
	"testing"
	"time"

	"github.com/arenaguard/arenaguard/internal/vote"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// seq builds a history from winner values, spacing votes `gap` apart
// on the same battle pair with distinct prompts.
func seq(gap time.Duration, winners ...vote.Winner) []vote.Event {
	out := make([]vote.Event, len(winners))
	for i, w := range winners {
		out[i] = vote.Event{
			JudgeID:   "j1",
			Pair:      vote.NewPair("item_alpha", "item_beta"),
			Winner:    w,
			Prompt:    fmt.Sprintf("prompt %d", i),
			Timestamp: baseTime.Add(time.Duration(i) * gap),
		}
	}
	return out
}

func TestFastVote(t *testing.T) {
	tests := []struct {
		name string
		hist []vote.Event
		want bool
	}{
		{"empty", nil, false},
		{"single vote", seq(time.Second, vote.WinnerItemA), false},
		{"two votes 1s apart", seq(time.Second, vote.WinnerItemA, vote.WinnerItemB), true},
		{"two votes exactly 3s apart", seq(3*time.Second, vote.WinnerItemA, vote.WinnerItemB), false},
		{"two votes 10s apart", seq(10*time.Second, vote.WinnerItemA, vote.WinnerItemB), false},
		{"same instant", seq(0, vote.WinnerTie, vote.WinnerTie), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FastVote(tc.hist); got != tc.want {
				t.Errorf("FastVote = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStrongBias(t *testing.T) {
	a, b, tie := vote.WinnerItemA, vote.WinnerItemB, vote.WinnerTie

	tests := []struct {
		name string
		hist []vote.Event
		want bool
	}{
		{"fewer than five votes", seq(time.Minute, a, a, a, a), false},
		{"five unanimous item_a", seq(time.Minute, a, a, a, a, a), true},
		{"five unanimous item_b", seq(time.Minute, b, b, b, b, b), true},
		{"one dissent in window", seq(time.Minute, a, a, b, a, a), false},
		{"unanimous ties do not count", seq(time.Minute, tie, tie, tie, tie, tie), false},
		{"older dissent outside window", seq(time.Minute, b, a, a, a, a, a), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StrongBias(tc.hist); got != tc.want {
				t.Errorf("StrongBias = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRepetitiveBattle(t *testing.T) {
	same := seq(time.Minute, vote.WinnerItemA, vote.WinnerItemB, vote.WinnerItemA,
		vote.WinnerItemB, vote.WinnerItemA, vote.WinnerItemB)
	if !RepetitiveBattle(same) {
		t.Error("6 votes on one pair should flag repetitive battle")
	}

	// Exactly 5 on the same pair is still within bounds.
	if RepetitiveBattle(same[:5]) {
		t.Error("5 votes on one pair should not flag")
	}

	// Votes spread over distinct pairs never flag.
	var spread []vote.Event
	for i := 0; i < 10; i++ {
		spread = append(spread, vote.Event{
			Pair:      vote.NewPair(fmt.Sprintf("item_%d", i), "item_x"),
			Winner:    vote.WinnerItemA,
			Prompt:    fmt.Sprintf("p%d", i),
			Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
		})
	}
	if RepetitiveBattle(spread) {
		t.Error("distinct pairs should not flag")
	}

	if RepetitiveBattle(nil) {
		t.Error("empty history should not flag")
	}
}

func TestRepetitivePrompt(t *testing.T) {
	// 6 votes, single prompt → diversity 1/6 ≈ 0.167 < 0.3.
	hist := seq(time.Minute, vote.WinnerItemA, vote.WinnerItemB, vote.WinnerItemA,
		vote.WinnerItemB, vote.WinnerItemA, vote.WinnerItemB)
	for i := range hist {
		hist[i].Prompt = "Tell me a joke."
	}
	if !RepetitivePrompt(hist) {
		t.Error("single prompt over 6 votes should flag")
	}

	// Below the sample floor the signal stays off even at zero diversity.
	if RepetitivePrompt(hist[:5]) {
		t.Error("5 votes should be below the sample floor")
	}

	// Fully distinct prompts → diversity 1.0.
	if RepetitivePrompt(seq(time.Minute, vote.WinnerItemA, vote.WinnerItemB,
		vote.WinnerItemA, vote.WinnerItemB, vote.WinnerItemA, vote.WinnerItemB)) {
		t.Error("distinct prompts should not flag")
	}

	if RepetitivePrompt(nil) {
		t.Error("empty history should not flag (no divide by zero)")
	}
}

func TestExcessiveTies(t *testing.T) {
	a, tie, both := vote.WinnerItemA, vote.WinnerTie, vote.WinnerTieBoth

	// 5 ties out of 6 → 0.833 > 0.8.
	if !ExcessiveTies(seq(time.Minute, tie, tie, both, tie, tie, a)) {
		t.Error("5/6 ties should flag")
	}
	// 4 ties out of 6 → 0.667.
	if ExcessiveTies(seq(time.Minute, tie, tie, both, tie, a, a)) {
		t.Error("4/6 ties should not flag")
	}
	// All ties but only 5 votes — below the sample floor.
	if ExcessiveTies(seq(time.Minute, tie, tie, tie, tie, tie)) {
		t.Error("5 votes should be below the sample floor")
	}
	if ExcessiveTies(nil) {
		t.Error("empty history should not flag (no divide by zero)")
	}
}

func TestCompute_CombinesAll(t *testing.T) {
	// 6 votes for item_a on one pair & prompt, last two 1s apart:
	// every indicator except excessive ties should be on.
	hist := seq(time.Minute, vote.WinnerItemA, vote.WinnerItemA, vote.WinnerItemA,
		vote.WinnerItemA, vote.WinnerItemA, vote.WinnerItemA)
	for i := range hist {
		hist[i].Prompt = "Explain gravity."
	}
	hist[5].Timestamp = hist[4].Timestamp.Add(time.Second)

	got := Compute(hist)
	want := Snapshot{
		FastVote:         true,
		StrongBias:       true,
		RepetitiveBattle: true,
		RepetitivePrompt: true,
		ExcessiveTies:    false,
	}
	if got != want {
		t.Errorf("Compute = %+v, want %+v", got, want)
	}
}
