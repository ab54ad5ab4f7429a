package session

import (
	"strings"
	"time"
)

// State tracks the orchestrator lifecycle.
type State string

const (
	NotStarted    State = "not_started"
	AwaitingReady State = "awaiting_ready"
	Active        State = "active"
	Finalizing    State = "finalizing"
	Completed     State = "completed"
	Declined      State = "declined"
)

// Turn pairs one user utterance with the assistant reply. AIText stays
// empty when the utterance ended the session before a reply was made.
type Turn struct {
	UserText string `json:"userText"`
	AIText   string `json:"aiText,omitempty"`
}

// Transcript is the ordered turn sequence of one session. It is owned
// by a single orchestrator and immutable once the session ends.
type Transcript struct {
	turns []Turn
}

// AppendUser opens a new turn holding the user utterance.
func (t *Transcript) AppendUser(text string) {
	t.turns = append(t.turns, Turn{UserText: text})
}

// AppendAI fills the assistant reply of the most recent turn.
func (t *Transcript) AppendAI(text string) {
	if len(t.turns) == 0 {
		t.turns = append(t.turns, Turn{AIText: text})
		return
	}
	t.turns[len(t.turns)-1].AIText = text
}

// Turns returns a copy of the recorded turns.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Window returns the last n turns.
func (t *Transcript) Window(n int) []Turn {
	if n <= 0 || len(t.turns) <= n {
		return t.Turns()
	}
	out := make([]Turn, n)
	copy(out, t.turns[len(t.turns)-n:])
	return out
}

// LastUserTexts returns the user side of up to n most recent turns,
// oldest first.
func (t *Transcript) LastUserTexts(n int) []string {
	turns := t.Window(n)
	out := make([]string, 0, len(turns))
	for _, turn := range turns {
		out = append(out, turn.UserText)
	}
	return out
}

// Len reports the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Text renders the transcript as newline-joined "User:"/"AI:" lines,
// the exact format persisted to disk.
func (t *Transcript) Text() string {
	var b strings.Builder
	for i, turn := range t.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("User: ")
		b.WriteString(turn.UserText)
		if turn.AIText != "" {
			b.WriteString("\nAI: ")
			b.WriteString(turn.AIText)
		}
	}
	return b.String()
}

// NewID derives a session identifier from the wall clock. The format
// sorts chronologically under lexicographic ordering, which is what
// lets "latest" be computed from filenames alone.
func NewID(now time.Time) string {
	return now.Format("20060102_150405")
}
