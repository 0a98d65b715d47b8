package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
)

// FallbackNotice is shown once when the channel cannot be used.
const FallbackNotice = "⚠️ Could not connect over WebSocket. Using HTTP."

// Fallback is the request/response path, normally backend.Client.
type Fallback interface {
	SendMessage(ctx context.Context, req backend.ChatRequest) (string, error)
}

// Callbacks receive channel events. Every call carries the session id it
// belongs to so receivers can drop events from a replaced session.
type Callbacks struct {
	OnMessage func(sessionID, text string)
	OnNotice  func(sessionID, text string)
	OnState   func(sessionID string, state State)
}

// Manager keeps at most one channel, bound to the current session id.
type Manager struct {
	dialer   Dialer
	fallback Fallback
	cb       Callbacks
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	sessionID string
	attempted bool
	conn      Conn
}

func NewManager(dialer Dialer, fallback Fallback, cb Callbacks, logger *slog.Logger) *Manager {
	return &Manager{
		dialer:   dialer,
		fallback: fallback,
		cb:       cb,
		logger:   logger,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// SetFallback swaps the request/response path, e.g. after the backend moved.
func (m *Manager) SetFallback(f Fallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = f
}

// apply moves the state machine. Caller holds mu.
func (m *Manager) apply(e Event) State {
	next, err := Next(m.state, e)
	if err != nil {
		m.logger.Error("transport transition rejected", "session_id", m.sessionID, "error", err)
		return m.state
	}
	m.logger.Debug("transport transition", "session_id", m.sessionID, "from", m.state, "to", next, "event", e)
	m.state = next
	return next
}

func (m *Manager) emitState(sessionID string, s State) {
	if m.cb.OnState != nil {
		m.cb.OnState(sessionID, s)
	}
}

func (m *Manager) emitNotice(sessionID string) {
	if m.cb.OnNotice != nil {
		m.cb.OnNotice(sessionID, FallbackNotice)
	}
}

// Connect binds the manager to sessionID and opens its channel. A new session
// id closes the previous channel. The channel is attempted once per session
// id; later calls for the same id are no-ops. Handshake failure is advisory:
// the manager moves to closed-fallback and the error is returned for logging.
func (m *Manager) Connect(ctx context.Context, baseURL, sessionID string) error {
	m.mu.Lock()
	var old Conn
	if sessionID != m.sessionID {
		old = m.conn
		m.conn = nil
		m.sessionID = sessionID
		m.attempted = false
		m.apply(EventSessionChanged)
	}
	if m.attempted {
		m.mu.Unlock()
		return nil
	}
	m.attempted = true
	state := m.apply(EventDial)
	m.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	m.emitState(sessionID, state)

	url, err := ChannelURL(baseURL, sessionID)
	var conn Conn
	if err == nil {
		conn, err = m.dialer.Dial(ctx, url)
	}

	m.mu.Lock()
	if m.sessionID != sessionID {
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return nil
	}
	if err != nil {
		state = m.apply(EventHandshakeFailed)
		m.mu.Unlock()
		m.logger.Warn("websocket unavailable, using http", "session_id", sessionID, "error", err)
		m.emitState(sessionID, state)
		m.emitNotice(sessionID)
		return fmt.Errorf("open channel: %w", err)
	}
	m.conn = conn
	state = m.apply(EventHandshakeOK)
	m.mu.Unlock()

	m.logger.Info("websocket open", "session_id", sessionID)
	m.emitState(sessionID, state)
	go m.readLoop(sessionID, conn)
	return nil
}

func (m *Manager) readLoop(sessionID string, conn Conn) {
	for {
		text, err := conn.ReadText()
		if err != nil {
			m.channelLost(sessionID, conn, err)
			return
		}
		if m.cb.OnMessage != nil {
			m.cb.OnMessage(sessionID, text)
		}
	}
}

// channelLost handles an error on conn. It is a no-op when conn is no longer
// the active channel, which is the case after Close or a session change.
func (m *Manager) channelLost(sessionID string, conn Conn, cause error) {
	m.mu.Lock()
	if m.conn != conn || m.sessionID != sessionID {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	state := m.apply(EventChannelClosed)
	m.mu.Unlock()

	_ = conn.Close()
	m.logger.Warn("websocket closed, using http", "session_id", sessionID, "error", cause)
	m.emitState(sessionID, state)
	m.emitNotice(sessionID)
}

// Send routes one outbound turn. When the channel is open the request is
// written as a plain text frame (the backend session is bound by the URL)
// and the reply arrives later through OnMessage
// (async is true). Otherwise the fallback is called and its reply returned.
func (m *Manager) Send(ctx context.Context, req backend.ChatRequest) (reply string, async bool, err error) {
	m.mu.Lock()
	conn := m.conn
	open := m.state == StateOpen && conn != nil && m.sessionID == req.SessionID
	fallback := m.fallback
	m.mu.Unlock()

	if open {
		werr := conn.WriteText(req.Message)
		if werr == nil {
			return "", true, nil
		}
		m.channelLost(req.SessionID, conn, werr)
	}

	if fallback == nil {
		return "", false, fmt.Errorf("no fallback transport")
	}
	reply, err = fallback.SendMessage(ctx, req)
	if err != nil {
		return "", false, fmt.Errorf("send message: %w", err)
	}
	return reply, false, nil
}

// Close shuts the active channel without emitting a notice.
func (m *Manager) Close() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	if m.state == StateOpen {
		m.apply(EventChannelClosed)
	}
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}
