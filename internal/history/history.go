package history

import (
	"sort"
	"sync"
	"time"

	"github.com/arenaguard/arenaguard/internal/vote"
)

// Store is a thread-safe in-memory vote log keyed by judge id.
// Accessors return copies so callers can never mutate stored events.
type Store struct {
	mu   sync.RWMutex
	logs map[string][]vote.Event
}

// New creates an empty Store.
func New() *Store {
	return &Store{logs: make(map[string][]vote.Event)}
}

// Append adds ev to the end of the judge's log. The judge's log is
// created lazily on first append.
func (s *Store) Append(judgeID string, ev vote.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[judgeID] = append(s.logs[judgeID], ev)
}

// All returns a copy of the judge's full log in arrival order.
func (s *Store) All(judgeID string) []vote.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[judgeID]
	out := make([]vote.Event, len(log))
	copy(out, log)
	return out
}

// Tail returns a copy of the last n events, or the full log if it is
// shorter than n.
func (s *Store) Tail(judgeID string, n int) []vote.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[judgeID]
	if n > len(log) {
		n = len(log)
	}
	out := make([]vote.Event, n)
	copy(out, log[len(log)-n:])
	return out
}

// Len returns the number of events in the judge's log.
func (s *Store) Len(judgeID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[judgeID])
}

// LastTimestamp returns the timestamp of the judge's most recent event.
// ok is false when the judge has no history yet.
func (s *Store) LastTimestamp(judgeID string) (t time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[judgeID]
	if len(log) == 0 {
		return time.Time{}, false
	}
	return log[len(log)-1].Timestamp, true
}

// StampScore records the post-evaluation suspicion score on the
// judge's most recent event (the "suspicion_score_after" audit field).
// This is not a sequence mutation; the event's decision fields stay
// immutable.
func (s *Store) StampScore(judgeID string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.logs[judgeID]
	if len(log) == 0 {
		return
	}
	log[len(log)-1].ScoreAfter = score
}

// Judges returns the ids of all judges with at least one vote, sorted
// for deterministic iteration.
func (s *Store) Judges() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.logs))
	for id := range s.logs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
