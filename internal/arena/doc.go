// Package arena is the thin comparison-arena shell the scoring engine
// serves: anonymous judge session ids, prompt rotation, and canned
// paired responses. It produces the vote events the engine consumes
// and is deliberately replaceable — nothing in it feeds back into the
// suspicion logic.
package arena
