package arena

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/arenaguard/arenaguard/internal/vote"
)

// DefaultPrompt seeds a fresh session before the judge types anything.
const DefaultPrompt = "Explain the concept of photosynthesis in simple terms."

// promptPool is cycled through after each vote so consecutive battles
// don't reuse the same prompt by default.
var promptPool = []string{
	"Tell me a joke.",
	"Write a short story.",
	"Explain gravity.",
}

// The two anonymized items every battle compares.
const (
	itemAlpha = "item_alpha"
	itemBeta  = "item_beta"
)

// NewJudgeID mints an opaque per-session judge identifier.
func NewJudgeID() string {
	return "user_" + uuid.NewString()[:8]
}

// Battle returns the canonical battle pair for a session.
func Battle() vote.Pair {
	return vote.NewPair(itemAlpha, itemBeta)
}

// NextPrompt picks the next prompt shown after a vote.
func NextPrompt() string {
	return promptPool[rand.Intn(len(promptPool))]
}

// Responses returns the canned response pair for a prompt, routed on
// simple keywords. Real generation is out of scope; these stand in
// for the two compared items.
func Responses(prompt string) (a, b string) {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "joke"):
		return "Why don't scientists trust atoms? Because they make up everything!",
			"I told my wife she was drawing her eyebrows too high. She looked surprised."
	case strings.Contains(p, "story"):
		return "Once upon a time, in a land of code, a brave function set out to find the missing semicolon.",
			"The old lighthouse stood against the storm, its light a beacon of hope."
	case strings.Contains(p, "code"), strings.Contains(p, "python"):
		return "def hello_world():\n    print('Hello, World!')",
			"def greet(name):\n    return f'Hello, {name}!'"
	default:
		return fmt.Sprintf("Item A has processed your request about '%s'.", prompt),
			fmt.Sprintf("Item B finds your query, '%s', fascinating.", prompt)
	}
}
