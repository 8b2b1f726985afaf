package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/arenaguard/arenaguard/internal/arena"
	"github.com/arenaguard/arenaguard/internal/metrics"
	"github.com/arenaguard/arenaguard/internal/notify"
	"github.com/arenaguard/arenaguard/internal/suspicion"
	"github.com/arenaguard/arenaguard/internal/vote"
)

// historyLimit caps how many audit entries the judge detail endpoint returns.
const historyLimit = 50

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	engine   *suspicion.Engine
	notifier *notify.Notifier
	registry *metrics.Registry
	mux      *http.ServeMux
	now      func() time.Time // injectable for deterministic tests
}

// New creates a Handler wired to the engine, notifier, and metrics
// registry, and registers all routes.
func New(engine *suspicion.Engine, notifier *notify.Notifier, registry *metrics.Registry) *Handler {
	h := &Handler{
		engine:   engine,
		notifier: notifier,
		registry: registry,
		mux:      http.NewServeMux(),
		now:      time.Now,
	}

	h.mux.HandleFunc("/api/v1/votes", h.recordVote)
	h.mux.HandleFunc("/api/v1/session", h.newSession)
	h.mux.HandleFunc("/api/v1/generate", h.generate)
	h.mux.HandleFunc("/api/v1/judges", h.listJudges)
	h.mux.HandleFunc("/api/v1/judges/", h.getJudge) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/flags", h.flags)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// recordVote handles POST /api/v1/votes — the engine's single intake.
func (h *Handler) recordVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ts := h.now().UTC()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339Nano, req.Timestamp)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, "timestamp must be RFC3339")
			return
		}
		ts = parsed
	}

	ev := vote.Event{
		JudgeID:   req.JudgeID,
		Pair:      vote.NewPair(req.ItemA, req.ItemB),
		Winner:    vote.Winner(req.Winner),
		Prompt:    req.Prompt,
		Timestamp: ts,
	}

	res, err := h.engine.RecordVote(ev)
	if err != nil {
		h.registry.RecordRejected()
		switch {
		case errors.Is(err, vote.ErrUnknownWinner),
			errors.Is(err, vote.ErrMissingJudge),
			errors.Is(err, vote.ErrEmptyPair),
			errors.Is(err, vote.ErrTimestampRegression):
			jsonErr(w, http.StatusUnprocessableEntity, err.Error())
		default:
			jsonErr(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.registry.RecordVote(res)
	h.notifier.Observe(req.JudgeID, res)

	jsonResp(w, http.StatusOK, VoteResponse{
		Score:          res.Score,
		Status:         string(res.Status),
		TriggeredRules: ruleLabels(res.TriggeredRules),
		Evaluated:      res.Evaluated,
		NextPrompt:     arena.NextPrompt(),
	})
}

// newSession handles POST /api/v1/session — bootstraps an anonymous judge.
func (h *Handler) newSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	battle := arena.Battle()
	a, b := arena.Responses(arena.DefaultPrompt)
	jsonResp(w, http.StatusOK, SessionResponse{
		JudgeID:   arena.NewJudgeID(),
		Prompt:    arena.DefaultPrompt,
		Battle:    BattlePair{A: battle.A, B: battle.B},
		Responses: ResponsePair{A: a, B: b},
	})
}

// generate handles POST /api/v1/generate — canned responses for a prompt.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		jsonErr(w, http.StatusUnprocessableEntity, "prompt is required")
		return
	}

	a, b := arena.Responses(req.Prompt)
	jsonResp(w, http.StatusOK, GenerateResponse{
		Prompt:    req.Prompt,
		Responses: ResponsePair{A: a, B: b},
	})
}

// listJudges handles GET /api/v1/judges.
func (h *Handler) listJudges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snaps := h.engine.Judges()
	out := make([]JudgeResponse, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, toJudgeResponse(s))
	}
	jsonResp(w, http.StatusOK, out)
}

// getJudge handles GET /api/v1/judges/{id} — detail with audit history.
func (h *Handler) getJudge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/judges/")
	if id == "" {
		h.listJudges(w, r)
		return
	}

	snap, ok := h.engine.Judge(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "judge not found")
		return
	}

	resp := toJudgeResponse(snap)
	for _, ev := range h.engine.History(id, historyLimit) {
		resp.History = append(resp.History, VoteRecord{
			Pair:       ev.Pair.Key(),
			Winner:     string(ev.Winner),
			Prompt:     ev.Prompt,
			Timestamp:  ev.Timestamp.UTC().Format(time.RFC3339Nano),
			ScoreAfter: ev.ScoreAfter,
		})
	}
	jsonResp(w, http.StatusOK, resp)
}

// health handles GET /api/v1/health — aggregate counts.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snaps := h.engine.Judges()
	resp := HealthResponse{
		JudgeCount:      len(snaps),
		ActiveFlagCount: len(h.notifier.Active()),
	}
	for _, s := range snaps {
		resp.VoteCount += s.Votes
		switch s.Status {
		case suspicion.StatusSuspicious:
			resp.SuspiciousCount++
		case suspicion.StatusFlagged:
			resp.FlaggedCount++
		default:
			resp.NormalCount++
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// flags handles GET /api/v1/flags — active and recently resolved flags.
func (h *Handler) flags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.notifier.Active())
}

// snapshot handles GET /api/v1/snapshot — the full arena dump.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.engine))
}

// BuildSnapshot assembles the full arena snapshot. Shared with the
// WebSocket hub so both surfaces broadcast identical shapes.
func BuildSnapshot(engine *suspicion.Engine) SnapshotResponse {
	snaps := engine.Judges()
	judges := make([]JudgeResponse, 0, len(snaps))
	for _, s := range snaps {
		judges = append(judges, toJudgeResponse(s))
	}
	return SnapshotResponse{
		Judges:      judges,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func ruleLabels(rules []suspicion.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.String())
	}
	return out
}

func toJudgeResponse(s suspicion.JudgeSnapshot) JudgeResponse {
	resp := JudgeResponse{
		JudgeID:        s.JudgeID,
		Score:          s.Score,
		Status:         string(s.Status),
		TriggeredRules: ruleLabels(s.TriggeredRules),
		Votes:          s.Votes,
	}
	if !s.LastVote.IsZero() {
		resp.LastVote = s.LastVote.UTC().Format(time.RFC3339Nano)
	}
	return resp
}
