package vote

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors returned at ingestion. Events that fail validation
// are never appended to a judge's history.
var (
	ErrMissingJudge        = errors.New("vote: judge id is required")
	ErrUnknownWinner       = errors.New("vote: unknown winner value")
	ErrEmptyPair           = errors.New("vote: both battle items are required")
	ErrTimestampRegression = errors.New("vote: timestamp precedes previous vote")
)

// Winner is the closed set of outcomes a judge can pick.
type Winner string

const (
	WinnerItemA   Winner = "item_a"
	WinnerItemB   Winner = "item_b"
	WinnerTie     Winner = "tie"
	WinnerTieBoth Winner = "tie_both_bad"
)

// ParseWinner validates s against the closed winner set.
func ParseWinner(s string) (Winner, error) {
	switch w := Winner(s); w {
	case WinnerItemA, WinnerItemB, WinnerTie, WinnerTieBoth:
		return w, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWinner, s)
	}
}

// IsTie reports whether the outcome is any tie variant.
func (w Winner) IsTie() bool {
	return w == WinnerTie || w == WinnerTieBoth
}

// IsItem reports whether the outcome names one of the two compared items.
func (w Winner) IsItem() bool {
	return w == WinnerItemA || w == WinnerItemB
}

// Pair is the unordered pair of compared item identifiers.
// Construct it with NewPair so (x, y) and (y, x) compare equal.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPair canonicalizes the two item identifiers lexicographically.
func NewPair(x, y string) Pair {
	if strings.Compare(x, y) > 0 {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// Key returns a stable map key for the pair.
func (p Pair) Key() string {
	return p.A + "|" + p.B
}

// Event is one judge decision. Once appended to a history it is never
// modified, with the single exception of the ScoreAfter audit field
// which the engine stamps right after the evaluation that consumed it.
type Event struct {
	JudgeID   string    `json:"judge_id"`
	Pair      Pair      `json:"battle_pair"`
	Winner    Winner    `json:"winner"`
	Prompt    string    `json:"prompt"`
	Timestamp time.Time `json:"timestamp"`

	// ScoreAfter is the judge's suspicion score immediately after this
	// vote was evaluated, kept for audit and display.
	ScoreAfter float64 `json:"suspicion_score_after"`
}

// Validate checks the event's own fields. Timestamp ordering against
// the judge's history is enforced by the engine, which owns that state.
func (e Event) Validate() error {
	if e.JudgeID == "" {
		return ErrMissingJudge
	}
	if e.Pair.A == "" || e.Pair.B == "" {
		return ErrEmptyPair
	}
	if _, err := ParseWinner(string(e.Winner)); err != nil {
		return err
	}
	return nil
}
