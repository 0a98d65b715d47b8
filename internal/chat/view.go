// Package chat is the conversation view model. It finds the backend, keeps the
// transport bound to the active session, reconciles turns and turns suggested
// actions back into backend commands.
package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/proposer/internal/actions"
	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/conversation"
	"github.com/MikeSquared-Agency/proposer/internal/hermes"
	"github.com/MikeSquared-Agency/proposer/internal/learning"
	"github.com/MikeSquared-Agency/proposer/internal/transport"
)

const (
	DefaultGreeting    = "👋 Hi, I'm the proposal assistant. Describe your project or type /proposal: <requirements>."
	NoticeNoBackend    = "⚠️ Backend not detected. Start the API on port 8000."
	DefaultRosterDelay = 1500 * time.Millisecond

	proposalCommand = "/proposal:"
)

var (
	ErrEmptyMessage       = errors.New("message is empty")
	ErrConversationEnded  = errors.New("conversation already has a final proposal")
	ErrBackendUnavailable = errors.New("backend not detected")
)

// API is the part of the backend the view talks to.
type API interface {
	transport.Fallback
	Proposal(ctx context.Context, req backend.ProposalRequest) (*backend.Proposal, error)
	ListEmployees(ctx context.Context) ([]backend.Employee, error)
	CreateEmployee(ctx context.Context, e backend.Employee) (*backend.Employee, error)
	UpdateEmployee(ctx context.Context, id int, e backend.Employee) (*backend.Employee, error)
	DeleteEmployee(ctx context.Context, id int) error
	Me(ctx context.Context) (*backend.User, error)
	ListProposals(ctx context.Context, sessionID string) ([]backend.StoredProposal, error)
	ProposalPhases(ctx context.Context, proposalID int) ([]backend.PhasePlan, error)
	StartTracking(ctx context.Context, proposalID int, name string) (int, error)
	GetTracking(ctx context.Context, runID int) (*backend.TrackingRun, error)
	ToggleTask(ctx context.Context, runID, taskIdx int, completed bool) error
	ListChats(ctx context.Context) ([]backend.SavedChat, error)
	GetChat(ctx context.Context, id int) (*backend.SavedChat, error)
	CreateChat(ctx context.Context, title, content string) (*backend.SavedChat, error)
	UpdateChat(ctx context.Context, id int, upd backend.SavedChatUpdate) (*backend.SavedChat, error)
	DeleteChat(ctx context.Context, id int) error
	ContinueChat(ctx context.Context, id int) (string, error)
	ExportChatPDF(ctx context.Context, req backend.ExportRequest, w io.Writer) (int64, error)
	Recommend(ctx context.Context, req backend.RecommendRequest) ([]backend.Recommendation, error)
}

var _ API = (*backend.Client)(nil)

// Resolver finds a reachable backend base URL.
type Resolver interface {
	Resolve(ctx context.Context) (string, bool)
}

// EventSink receives conversation events, normally a NATS client.
type EventSink interface {
	Publish(subject string, data any) error
}

type Options struct {
	Resolver    Resolver
	Dialer      transport.Dialer
	NewAPI      func(baseURL string) API
	Events      EventSink
	RosterDelay time.Duration
	Greeting    string
	Logger      *slog.Logger
}

type View struct {
	resolver    Resolver
	newAPI      func(baseURL string) API
	events      EventSink
	rosterDelay time.Duration
	greeting    string
	logger      *slog.Logger

	conv      *conversation.Reconciler
	transport *transport.Manager

	mu            sync.Mutex
	baseURL       string
	api           API
	noticeShown   bool
	modal         *Modal
	projectID     int
	title         string
	rosterPending map[string]bool
	learn         *learning.Session
}

func New(opts Options) *View {
	if opts.RosterDelay <= 0 {
		opts.RosterDelay = DefaultRosterDelay
	}
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	v := &View{
		resolver:      opts.Resolver,
		newAPI:        opts.NewAPI,
		events:        opts.Events,
		rosterDelay:   opts.RosterDelay,
		greeting:      opts.Greeting,
		logger:        opts.Logger,
		conv:          conversation.NewReconciler(),
		rosterPending: make(map[string]bool),
	}
	v.transport = transport.NewManager(opts.Dialer, nil, transport.Callbacks{
		OnMessage: v.handleInbound,
		OnNotice:  v.notice,
		OnState:   v.publishState,
	}, opts.Logger)
	return v
}

// Mount starts a view for sessionID with the given history. It runs one
// backend resolution pass and opens the session channel. An empty session id
// gets a fresh one, which is returned.
func (v *View) Mount(ctx context.Context, sessionID string, history []conversation.Turn) string {
	if sessionID == "" {
		sessionID = "session-" + uuid.NewString()
	}

	v.mu.Lock()
	v.noticeShown = false
	v.modal = nil
	v.projectID = 0
	v.title = ""
	v.mu.Unlock()

	v.load(sessionID, history)

	base, ok := v.resolver.Resolve(ctx)
	v.mu.Lock()
	if !ok {
		v.baseURL, v.api = "", nil
		v.mu.Unlock()
		v.transport.Close()
		v.logger.Warn("mounted without backend", "session_id", sessionID)
		return sessionID
	}
	v.baseURL = base
	v.api = v.newAPI(base)
	v.transport.SetFallback(v.api)
	v.mu.Unlock()

	v.connect(ctx, sessionID)
	return sessionID
}

// load replaces the history. A new conversation starts with the greeting.
func (v *View) load(sessionID string, history []conversation.Turn) {
	if len(history) == 0 {
		history = []conversation.Turn{conversation.NewTurn(conversation.RoleAssistant, v.greeting)}
	}
	v.conv.Load(sessionID, history)
	v.logger.Info("conversation loaded", "session_id", sessionID, "turns", len(v.conv.Turns()))
}

func (v *View) connect(ctx context.Context, sessionID string) {
	v.mu.Lock()
	base := v.baseURL
	v.mu.Unlock()
	if base == "" {
		return
	}
	if err := v.transport.Connect(ctx, base, sessionID); err != nil {
		v.logger.Debug("channel not opened", "session_id", sessionID, "error", err)
	}
}

func (v *View) currentAPI() API {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.api
}

// Send appends a user turn and routes it to the backend. Blank text is
// rejected before anything else happens. Backend failures become notice
// turns, not errors.
func (v *View) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	sid := v.conv.SessionID()
	switch v.conv.AppendUser(sid, text) {
	case conversation.Discarded:
		return ErrConversationEnded
	case conversation.Appended:
		v.publishTurn(sid, conversation.RoleUser, text)
	}

	api := v.currentAPI()
	if api == nil {
		v.noticeNoBackend(sid)
		return nil
	}

	if strings.HasPrefix(strings.ToLower(text), proposalCommand) {
		v.requestProposal(ctx, api, sid, strings.TrimSpace(text[len(proposalCommand):]))
		return nil
	}

	v.deliver(ctx, sid, text)
	return nil
}

// deliver sends one message over the transport and records a synchronous reply.
func (v *View) deliver(ctx context.Context, sid, message string) {
	req := backend.ChatRequest{
		SessionID: sid,
		Message:   message,
		Phase:     conversation.CurrentPhase(v.conv.Turns()),
	}
	reply, async, err := v.transport.Send(ctx, req)
	if err != nil {
		v.logger.Warn("send failed", "session_id", sid, "error", err)
		v.notice(sid, "⚠️ Error sending message: "+backend.Detail(err))
		return
	}
	if !async {
		v.handleInbound(sid, reply)
	}
}

func (v *View) requestProposal(ctx context.Context, api API, sid, requirements string) {
	if requirements == "" {
		requirements = "Generic project"
	}
	p, err := api.Proposal(ctx, backend.ProposalRequest{SessionID: sid, Requirements: requirements})
	if err != nil {
		v.logger.Warn("proposal failed", "session_id", sid, "error", err)
		v.notice(sid, "⚠️ Error getting the proposal: "+backend.Detail(err))
		return
	}
	v.handleInbound(sid, backend.FormatProposal(p))
}

// handleInbound records one backend turn for sid.
func (v *View) handleInbound(sid, text string) {
	outcome := v.conv.AppendInbound(sid, text)
	switch outcome {
	case conversation.Appended:
		v.publishTurn(sid, conversation.RoleAssistant, text)
		if conversation.IsTerminal(text) {
			v.publishFinal(sid, text)
		}
	case conversation.Suppressed:
		v.scheduleRosterForward(sid)
	default:
		v.logger.Debug("inbound turn dropped", "session_id", sid, "outcome", outcome)
	}
}

// notice records a client-side assistant turn.
func (v *View) notice(sid, text string) {
	if v.conv.AppendNotice(sid, text) == conversation.Appended {
		v.publishTurn(sid, conversation.RoleAssistant, text)
	}
}

func (v *View) noticeNoBackend(sid string) {
	v.mu.Lock()
	shown := v.noticeShown
	v.noticeShown = true
	v.mu.Unlock()
	if !shown {
		v.notice(sid, NoticeNoBackend)
	}
}

// Snapshot is the renderable state of the view.
type Snapshot struct {
	SessionID  string              `json:"session_id"`
	Backend    string              `json:"backend,omitempty"`
	Transport  transport.State     `json:"transport"`
	Turns      []conversation.Turn `json:"turns"`
	Actions    []actions.Action    `json:"actions"`
	Terminated bool                `json:"terminated"`
	Modal      *Modal              `json:"modal,omitempty"`
	ProjectID  int                 `json:"project_id,omitempty"`
	Title      string              `json:"title,omitempty"`
}

// Snapshot returns the current state. Turn content is cleaned of marker
// phrases; actions are derived from the raw text.
func (v *View) Snapshot() Snapshot {
	turns := v.conv.Turns()
	acts := actions.Derive(turns)
	if acts == nil {
		acts = []actions.Action{}
	}
	display := make([]conversation.Turn, len(turns))
	for i, t := range turns {
		t.Content = actions.Clean(t.Content)
		display[i] = t
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	var modal *Modal
	if v.modal != nil {
		m := *v.modal
		modal = &m
	}
	return Snapshot{
		SessionID:  v.conv.SessionID(),
		Backend:    v.baseURL,
		Transport:  v.transport.State(),
		Turns:      display,
		Actions:    acts,
		Terminated: v.conv.Terminated(),
		Modal:      modal,
		ProjectID:  v.projectID,
		Title:      v.title,
	}
}

// Turns returns the raw displayed turns.
func (v *View) Turns() []conversation.Turn {
	return v.conv.Turns()
}

// Close releases the transport channel.
func (v *View) Close() {
	v.transport.Close()
}

func (v *View) publish(subject string, data any) {
	if v.events == nil {
		return
	}
	if err := v.events.Publish(subject, data); err != nil {
		v.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func (v *View) publishTurn(sid string, role conversation.Role, text string) {
	v.publish(hermes.SubjectTurnAppended, hermes.TurnEvent{
		SessionID: sid,
		Role:      string(role),
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
}

func (v *View) publishFinal(sid, text string) {
	v.mu.Lock()
	title := v.title
	v.mu.Unlock()
	v.logger.Info("final proposal reached", "session_id", sid)
	v.publish(hermes.SubjectFinalProposal, hermes.FinalProposalEvent{
		SessionID: sid,
		Title:     title,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
}

func (v *View) publishState(sid string, s transport.State) {
	v.publish(hermes.SubjectTransportState, hermes.TransportEvent{
		SessionID: sid,
		State:     s.String(),
		Timestamp: time.Now().UTC(),
	})
}
