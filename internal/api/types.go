package api

// VoteRequest is the body of POST /api/v1/votes.
type VoteRequest struct {
	JudgeID string `json:"judge_id"`
	ItemA   string `json:"item_a"`
	ItemB   string `json:"item_b"`
	Winner  string `json:"winner"`
	Prompt  string `json:"prompt"`
	// Timestamp is optional RFC3339; the server clock is used when absent.
	Timestamp string `json:"timestamp,omitempty"`
}

// VoteResponse is the engine's verdict on the judge after one vote.
type VoteResponse struct {
	Score          float64  `json:"score"`
	Status         string   `json:"status"`
	TriggeredRules []string `json:"triggered_rules"`
	Evaluated      bool     `json:"evaluated"`
	// NextPrompt rotates the arena prompt after each vote.
	NextPrompt string `json:"next_prompt"`
}

// SessionResponse is the payload for POST /api/v1/session.
type SessionResponse struct {
	JudgeID   string       `json:"judge_id"`
	Prompt    string       `json:"prompt"`
	Battle    BattlePair   `json:"battle"`
	Responses ResponsePair `json:"responses"`
}

// GenerateRequest is the body of POST /api/v1/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is the canned response pair for a prompt.
type GenerateResponse struct {
	Prompt    string       `json:"prompt"`
	Responses ResponsePair `json:"responses"`
}

// BattlePair mirrors the canonicalized battle pair.
type BattlePair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// ResponsePair holds the two compared responses.
type ResponsePair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// JudgeResponse is one judge in GET /api/v1/judges or
// GET /api/v1/judges/{id}.
type JudgeResponse struct {
	JudgeID        string       `json:"judge_id"`
	Score          float64      `json:"score"`
	Status         string       `json:"status"`
	TriggeredRules []string     `json:"triggered_rules"`
	Votes          int          `json:"votes"`
	LastVote       string       `json:"last_vote,omitempty"` // RFC3339
	History        []VoteRecord `json:"history,omitempty"`   // detail endpoint only
}

// VoteRecord is one audit entry in a judge's history.
type VoteRecord struct {
	Pair       string  `json:"battle_pair"`
	Winner     string  `json:"winner"`
	Prompt     string  `json:"prompt"`
	Timestamp  string  `json:"timestamp"` // RFC3339
	ScoreAfter float64 `json:"suspicion_score_after"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	JudgeCount      int `json:"judge_count"`
	NormalCount     int `json:"normal_count"`
	SuspiciousCount int `json:"suspicious_count"`
	FlaggedCount    int `json:"flagged_count"`
	VoteCount       int `json:"vote_count"`
	ActiveFlagCount int `json:"active_flag_count"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot, also
// pushed over the WebSocket hub.
type SnapshotResponse struct {
	Judges      []JudgeResponse `json:"judges"`
	GeneratedAt string          `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
