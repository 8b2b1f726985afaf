package notify

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arenaguard/arenaguard/internal/config"
	"github.com/arenaguard/arenaguard/internal/suspicion"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Flag is a single escalation event produced by the notifier.
type Flag struct {
	ID         string           `json:"id"`
	JudgeID    string           `json:"judge_id"`
	Status     suspicion.Status `json:"status"`
	Score      float64          `json:"score"`
	Rules      []string         `json:"rules"`
	Message    string           `json:"message"`
	FiredAt    time.Time        `json:"fired_at"`
	ResolvedAt *time.Time       `json:"resolved_at,omitempty"`
	State      string           `json:"state"` // "firing" | "resolved"
}

// Notifier tracks per-judge escalations and delivers webhooks when a
// judge crosses the notification floor or drops back below it.
//
// Notifier is safe for concurrent use.
type Notifier struct {
	mu       sync.Mutex
	cfg      config.NotifyConfig
	active   map[string]*Flag     // key: judge id
	lastFire map[string]time.Time // last fire time per judge (for cooldown)
	history  []*Flag              // recently resolved flags
	client   *http.Client
	now      func() time.Time // injectable for deterministic tests
}

// New creates a Notifier from the notify configuration.
// A Notifier with no webhooks still tracks flags for the read API.
func New(cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		cfg:      cfg,
		active:   make(map[string]*Flag),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// UpdateConfig swaps the notify configuration. Called on hot reload;
// active flags and cooldown state are kept.
func (n *Notifier) UpdateConfig(cfg config.NotifyConfig) {
	n.mu.Lock()
	n.cfg = cfg
	n.mu.Unlock()
	slog.Info("notify: config updated",
		"floor", cfg.Floor, "webhooks", len(cfg.Webhooks))
}

// floor resolves the configured floor status.
func (n *Notifier) floor() suspicion.Status {
	if n.cfg.Floor == "suspicious" {
		return suspicion.StatusSuspicious
	}
	return suspicion.StatusFlagged
}

// Observe inspects one evaluation result. If the judge's status sits
// at or above the floor, a flag fires (subject to the per-judge
// cooldown); if it dropped back below the floor, any active flag is
// resolved. Webhook delivery happens on its own goroutine.
func (n *Notifier) Observe(judgeID string, res suspicion.Result) {
	now := n.now()

	n.mu.Lock()

	if res.Status.AtLeast(n.floor()) {
		cooldown := n.cfg.Cooldown
		if cooldown <= 0 {
			cooldown = defaultCooldown
		}
		if now.Sub(n.lastFire[judgeID]) <= cooldown {
			n.mu.Unlock()
			return
		}

		labels := make([]string, len(res.TriggeredRules))
		for i, r := range res.TriggeredRules {
			labels[i] = r.String()
		}
		f := &Flag{
			ID:      uuid.NewString(),
			JudgeID: judgeID,
			Status:  res.Status,
			Score:   res.Score,
			Rules:   labels,
			Message: fmt.Sprintf("judge %s is %s — score %.1f, rules %v",
				judgeID, res.Status, res.Score, labels),
			FiredAt: now,
			State:   "firing",
		}
		n.active[judgeID] = f
		n.lastFire[judgeID] = now
		flagCopy := *f
		n.mu.Unlock()

		slog.Warn("notify: judge flagged",
			"judge", judgeID,
			"status", string(res.Status),
			"score", res.Score,
			"rules", labels,
		)
		go n.deliver(&flagCopy)
		return
	}

	f, ok := n.active[judgeID]
	if !ok || f.State != "firing" {
		n.mu.Unlock()
		return
	}
	resolved := now
	f.State = "resolved"
	f.ResolvedAt = &resolved
	delete(n.active, judgeID)

	n.history = pruneHistory(append(n.history, f), now.Add(-recentWindowHours*time.Hour))
	flagCopy := *f
	n.mu.Unlock()

	slog.Info("notify: judge recovered", "judge", judgeID, "score", res.Score)
	go n.deliver(&flagCopy)
}

// pruneHistory drops flags that resolved before cutoff, then applies
// the length cap. Flags are appended in resolve order, so stale
// entries always form a prefix.
func pruneHistory(hist []*Flag, cutoff time.Time) []*Flag {
	i := 0
	for i < len(hist) && hist[i].ResolvedAt != nil && !hist[i].ResolvedAt.After(cutoff) {
		i++
	}
	hist = hist[i:]
	if len(hist) > maxHistoryLen {
		hist = hist[len(hist)-maxHistoryLen:]
	}
	return hist
}

// Active returns copies of all currently firing flags plus any flags
// resolved within the past hour.
func (n *Notifier) Active() []Flag {
	n.mu.Lock()
	defer n.mu.Unlock()

	cutoff := n.now().Add(-recentWindowHours * time.Hour)
	out := make([]Flag, 0, len(n.active))

	for _, f := range n.active {
		out = append(out, *f)
	}
	for _, f := range n.history {
		if f.ResolvedAt != nil && f.ResolvedAt.After(cutoff) {
			out = append(out, *f)
		}
	}
	return out
}
