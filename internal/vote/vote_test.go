package vote

import (
	"errors"
	"testing"
	"time"
)

func TestParseWinner(t *testing.T) {
	tests := []struct {
		in      string
		want    Winner
		wantErr bool
	}{
		{"item_a", WinnerItemA, false},
		{"item_b", WinnerItemB, false},
		{"tie", WinnerTie, false},
		{"tie_both_bad", WinnerTieBoth, false},
		{"model_a", "", true}, // legacy label — not accepted
		{"ITEM_A", "", true},
		{"", "", true},
		{"both_bad", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseWinner(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownWinner) {
					t.Fatalf("ParseWinner(%q) err = %v, want ErrUnknownWinner", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWinner(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseWinner(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWinner_TieAndItem(t *testing.T) {
	if !WinnerTie.IsTie() || !WinnerTieBoth.IsTie() {
		t.Error("tie variants should report IsTie")
	}
	if WinnerItemA.IsTie() || WinnerItemB.IsTie() {
		t.Error("item winners should not report IsTie")
	}
	if !WinnerItemA.IsItem() || !WinnerItemB.IsItem() {
		t.Error("item winners should report IsItem")
	}
	if WinnerTie.IsItem() {
		t.Error("tie should not report IsItem")
	}
}

func TestNewPair_Canonicalizes(t *testing.T) {
	p1 := NewPair("item_alpha", "item_beta")
	p2 := NewPair("item_beta", "item_alpha")
	if p1 != p2 {
		t.Errorf("pair order should not matter: %v vs %v", p1, p2)
	}
	if p1.A != "item_alpha" || p1.B != "item_beta" {
		t.Errorf("pair not sorted: %+v", p1)
	}
	if p1.Key() != "item_alpha|item_beta" {
		t.Errorf("Key() = %q", p1.Key())
	}
}

func TestEvent_Validate(t *testing.T) {
	base := Event{
		JudgeID:   "user_deadbeef",
		Pair:      NewPair("item_alpha", "item_beta"),
		Winner:    WinnerItemA,
		Prompt:    "Tell me a joke.",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	noJudge := base
	noJudge.JudgeID = ""
	if err := noJudge.Validate(); !errors.Is(err, ErrMissingJudge) {
		t.Errorf("missing judge err = %v, want ErrMissingJudge", err)
	}

	badWinner := base
	badWinner.Winner = "model_a"
	if err := badWinner.Validate(); !errors.Is(err, ErrUnknownWinner) {
		t.Errorf("bad winner err = %v, want ErrUnknownWinner", err)
	}

	halfPair := base
	halfPair.Pair = Pair{A: "item_alpha"}
	if err := halfPair.Validate(); !errors.Is(err, ErrEmptyPair) {
		t.Errorf("half pair err = %v, want ErrEmptyPair", err)
	}
}
