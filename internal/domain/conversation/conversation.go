package conversation

import "strings"

// Role is the speaker of a turn.
type Role string

// Roles.
const (
	User      Role = "user"
	Assistant Role = "assistant"
)

// Turn is one utterance.
type Turn struct {
	Role Role
	Text string
}

// Context is the caller-supplied conversation state. Read-only; never persisted here.
type Context struct {
	summary string
	turns   []Turn
}

// New creates a context. Blank turns are dropped and unknown roles become user.
func New(summary string, turns []Turn) Context {
	kept := make([]Turn, 0, len(turns))
	for _, t := range turns {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		role := t.Role
		if role != Assistant {
			role = User
		}
		kept = append(kept, Turn{Role: role, Text: text})
	}
	return Context{summary: strings.TrimSpace(summary), turns: kept}
}

// Summary returns the conversation summary.
func (c Context) Summary() string { return c.summary }

// Turns returns a copy of the recent turns, oldest first.
func (c Context) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Recent returns at most n latest turns, oldest first.
func (c Context) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	if n > len(c.turns) {
		n = len(c.turns)
	}
	out := make([]Turn, n)
	copy(out, c.turns[len(c.turns)-n:])
	return out
}

// LastUserTexts returns the n most recent user utterances, newest first.
func (c Context) LastUserTexts(n int) []string {
	var out []string
	for i := len(c.turns) - 1; i >= 0 && len(out) < n; i-- {
		if c.turns[i].Role == User {
			out = append(out, c.turns[i].Text)
		}
	}
	return out
}

// IsEmpty reports whether there is neither a summary nor turns.
func (c Context) IsEmpty() bool { return c.summary == "" && len(c.turns) == 0 }
