package conversation

// History is the ordered turn list. Once a terminal turn is recorded nothing
// else is retained.
type History struct {
	turns      []Turn
	terminated bool
}

// NewHistory builds a history from externally supplied turns, dropping
// everything after the first terminal turn.
func NewHistory(turns []Turn) *History {
	kept := TruncateAtTerminal(turns)
	h := &History{turns: kept}
	if n := len(kept); n > 0 && kept[n-1].Role == RoleAssistant && IsTerminal(kept[n-1].Content) {
		h.terminated = true
	}
	return h
}

// Append adds t unless the history already ended. It reports whether t was kept.
func (h *History) Append(t Turn) bool {
	if h.terminated {
		return false
	}
	h.turns = append(h.turns, t)
	if t.Role == RoleAssistant && IsTerminal(t.Content) {
		h.terminated = true
	}
	return true
}

func (h *History) Terminated() bool { return h.terminated }

func (h *History) Len() int { return len(h.turns) }

// Turns returns a copy of the turn list.
func (h *History) Turns() []Turn {
	return append([]Turn(nil), h.turns...)
}

// SetContent rewrites the displayed text of turn i. The timestamp is kept.
func (h *History) SetContent(i int, content string) bool {
	if i < 0 || i >= len(h.turns) {
		return false
	}
	h.turns[i].Content = content
	return true
}
