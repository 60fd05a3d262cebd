package domain

import "fmt"

// Transcript is the in-memory conversation for a single session.
//
// It is strictly append-only: turns are never removed or rewritten. A system
// turn, if present, is always the first element; it is inserted lazily via
// EnsureSystem on the first dispatch rather than at construction time. The
// transcript is not persisted across sessions.
//
// Transcript is not safe for concurrent use; callers serialize access
// (the runner loop and the HTTP session registry both guarantee a single
// outstanding dispatch per transcript).
type Transcript struct {
	turns []Turn
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// EnsureSystem inserts a system turn at the head of the transcript if no
// system turn is present and prompt is non-empty. It reports whether a turn
// was inserted. Calling it again is a no-op, so dispatch paths can invoke it
// unconditionally.
func (t *Transcript) EnsureSystem(prompt string) bool {
	if prompt == "" {
		return false
	}
	if _, ok := t.System(); ok {
		return false
	}
	t.turns = append([]Turn{{Role: RoleSystem, Content: prompt}}, t.turns...)
	return true
}

// Append adds a turn to the end of the transcript.
// A system turn is only accepted while the transcript is empty; everything
// else about the sequence is append-only by construction.
func (t *Transcript) Append(role Role, content string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == RoleSystem && len(t.turns) > 0 {
		return ErrSystemNotFirst
	}
	t.turns = append(t.turns, Turn{Role: role, Content: content})
	return nil
}

// Turns returns a copy of the transcript's turns in order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Last returns the most recent turn, if any.
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// System returns the system prompt and whether one is set.
func (t *Transcript) System() (string, bool) {
	if len(t.turns) > 0 && t.turns[0].Role == RoleSystem {
		return t.turns[0].Content, true
	}
	return "", false
}
