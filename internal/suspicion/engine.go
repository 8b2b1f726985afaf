package suspicion

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/arenaguard/arenaguard/internal/history"
	"github.com/arenaguard/arenaguard/internal/signals"
	"github.com/arenaguard/arenaguard/internal/vote"
)

// Result is what one recorded vote produces for its caller.
type Result struct {
	Score          float64 `json:"score"`
	Status         Status  `json:"status"`
	TriggeredRules []Rule  `json:"triggered_rules"`

	// Evaluated is false when the judge's history was still below
	// MinHistory and the vote was stored without an evaluation.
	Evaluated bool `json:"evaluated"`
}

// JudgeSnapshot is a judge's current derived state, for read APIs.
type JudgeSnapshot struct {
	JudgeID        string    `json:"judge_id"`
	Score          float64   `json:"score"`
	Status         Status    `json:"status"`
	TriggeredRules []Rule    `json:"triggered_rules"`
	Votes          int       `json:"votes"`
	LastVote       time.Time `json:"last_vote"`
}

// judgeState is the mutable per-judge state. Its mutex is the critical
// section for that judge: append, decay, signal computation, and
// classification all happen under it, so no two evaluations for the
// same judge can interleave.
type judgeState struct {
	mu        sync.Mutex
	score     float64
	status    Status
	triggered []Rule
}

// Engine ingests vote events and maintains per-judge suspicion state.
// Judges are created lazily on first vote and live for the life of
// the process. All methods are safe for concurrent use; evaluations
// for different judges run fully in parallel.
type Engine struct {
	store *history.Store

	mu     sync.RWMutex
	judges map[string]*judgeState
}

// NewEngine returns a ready-to-use Engine with an empty history store.
func NewEngine() *Engine {
	return &Engine{
		store:  history.New(),
		judges: make(map[string]*judgeState),
	}
}

// RecordVote validates ev, appends it to the judge's history, and —
// once the history is long enough — runs decay, signals, the rule
// table, and classification in one atomic step for that judge.
//
// The returned Result always satisfies Status == Classify(Score).
// Invalid events are rejected before anything is stored.
func (e *Engine) RecordVote(ev vote.Event) (Result, error) {
	if err := ev.Validate(); err != nil {
		return Result{}, err
	}
	if ev.Timestamp.IsZero() {
		return Result{}, fmt.Errorf("vote: timestamp is required")
	}

	js := e.stateFor(ev.JudgeID)
	js.mu.Lock()
	defer js.mu.Unlock()

	if last, ok := e.store.LastTimestamp(ev.JudgeID); ok && ev.Timestamp.Before(last) {
		return Result{}, fmt.Errorf("%w: %s < %s",
			vote.ErrTimestampRegression, ev.Timestamp.Format(time.RFC3339Nano), last.Format(time.RFC3339Nano))
	}

	e.store.Append(ev.JudgeID, ev)

	if e.store.Len(ev.JudgeID) < MinHistory {
		// Not enough data for robust checks: no decay, no penalty, no
		// rule set change. The audit field still records the (zero)
		// current score.
		e.store.StampScore(ev.JudgeID, js.score)
		return e.resultLocked(js, false), nil
	}

	sig := signals.Compute(e.store.All(ev.JudgeID))
	js.score, js.triggered = applyRules(js.score, sig)
	js.status = Classify(js.score)
	e.store.StampScore(ev.JudgeID, js.score)

	if len(js.triggered) > 0 {
		labels := make([]string, len(js.triggered))
		for i, r := range js.triggered {
			labels[i] = r.String()
		}
		slog.Info("suspicion: rules fired",
			"judge", ev.JudgeID,
			"rules", labels,
			"score", js.score,
			"status", string(js.status),
		)
	}

	return e.resultLocked(js, true), nil
}

// Judge returns the current snapshot for one judge.
func (e *Engine) Judge(judgeID string) (JudgeSnapshot, bool) {
	e.mu.RLock()
	js, ok := e.judges[judgeID]
	e.mu.RUnlock()
	if !ok {
		return JudgeSnapshot{}, false
	}

	js.mu.Lock()
	defer js.mu.Unlock()
	return e.snapshotLocked(judgeID, js), true
}

// Judges returns snapshots for every known judge, sorted by id.
func (e *Engine) Judges() []JudgeSnapshot {
	e.mu.RLock()
	ids := make([]string, 0, len(e.judges))
	for id := range e.judges {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Strings(ids)

	out := make([]JudgeSnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := e.Judge(id); ok {
			out = append(out, snap)
		}
	}
	return out
}

// History returns the last n events for a judge (all of them when
// n <= 0), including the suspicion_score_after audit values.
func (e *Engine) History(judgeID string, n int) []vote.Event {
	if n <= 0 {
		return e.store.All(judgeID)
	}
	return e.store.Tail(judgeID, n)
}

// StatusCounts tallies judges per status.
func (e *Engine) StatusCounts() map[Status]int {
	counts := make(map[Status]int, 3)
	for _, snap := range e.Judges() {
		counts[snap.Status]++
	}
	return counts
}

// stateFor returns the judge's state, creating it on first vote.
func (e *Engine) stateFor(judgeID string) *judgeState {
	e.mu.RLock()
	js, ok := e.judges[judgeID]
	e.mu.RUnlock()
	if ok {
		return js
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if js, ok = e.judges[judgeID]; ok {
		return js
	}
	js = &judgeState{status: StatusNormal}
	e.judges[judgeID] = js
	return js
}

// resultLocked builds a Result from js. Caller holds js.mu.
func (e *Engine) resultLocked(js *judgeState, evaluated bool) Result {
	return Result{
		Score:          js.score,
		Status:         js.status,
		TriggeredRules: append([]Rule(nil), js.triggered...),
		Evaluated:      evaluated,
	}
}

// snapshotLocked builds a JudgeSnapshot. Caller holds js.mu.
func (e *Engine) snapshotLocked(judgeID string, js *judgeState) JudgeSnapshot {
	snap := JudgeSnapshot{
		JudgeID:        judgeID,
		Score:          js.score,
		Status:         js.status,
		TriggeredRules: append([]Rule(nil), js.triggered...),
		Votes:          e.store.Len(judgeID),
	}
	if ts, ok := e.store.LastTimestamp(judgeID); ok {
		snap.LastVote = ts
	}
	return snap
}
