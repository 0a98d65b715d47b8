package conversation

import "sync"

// Outcome describes what happened to a turn handed to the Reconciler.
type Outcome int

const (
	// Appended means the turn is now displayed.
	Appended Outcome = iota
	// Suppressed means the turn was internal signaling and is hidden.
	Suppressed
	// Discarded means the conversation already reached its terminal turn.
	Discarded
	// Stale means the turn belongs to a session that is no longer active.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Appended:
		return "appended"
	case Suppressed:
		return "suppressed"
	case Discarded:
		return "discarded"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Reconciler merges persisted history with live transport turns for the
// active session. All methods are safe for concurrent use.
type Reconciler struct {
	mu        sync.Mutex
	sessionID string
	history   *History
}

func NewReconciler() *Reconciler {
	return &Reconciler{history: NewHistory(nil)}
}

// Load replaces the whole history and makes sessionID the active session.
// Turns after the first terminal turn are dropped.
func (r *Reconciler) Load(sessionID string, turns []Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionID = sessionID
	r.history = NewHistory(turns)
}

func (r *Reconciler) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// AppendUser records a turn typed by the user.
func (r *Reconciler) AppendUser(sessionID, text string) Outcome {
	return r.append(sessionID, NewTurn(RoleUser, text))
}

// AppendInbound records a backend turn. Roster requests are suppressed.
func (r *Reconciler) AppendInbound(sessionID, text string) Outcome {
	if IsRosterRequest(text) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sessionID != r.sessionID {
			return Stale
		}
		if r.history.Terminated() {
			return Discarded
		}
		return Suppressed
	}
	return r.append(sessionID, NewTurn(RoleAssistant, text))
}

// AppendNotice records a client-generated assistant notice.
func (r *Reconciler) AppendNotice(sessionID, text string) Outcome {
	return r.append(sessionID, NewTurn(RoleAssistant, text))
}

func (r *Reconciler) append(sessionID string, t Turn) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sessionID != r.sessionID {
		return Stale
	}
	if !r.history.Append(t) {
		return Discarded
	}
	return Appended
}

// Rewrite replaces the displayed text of turn i in the active session.
func (r *Reconciler) Rewrite(sessionID string, i int, content string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sessionID != r.sessionID {
		return false
	}
	return r.history.SetContent(i, content)
}

// Turns returns a copy of the displayed turns.
func (r *Reconciler) Turns() []Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Turns()
}

func (r *Reconciler) Terminated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Terminated()
}
