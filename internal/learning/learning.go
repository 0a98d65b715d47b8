// Package learning drives the backend's training mode: a separate session
// where the assistant explains a methodology topic at a chosen level instead
// of building a proposal.
package learning

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/conversation"
)

// activation is the keyword the backend recognises to enter training mode.
const activation = "aprender"

var (
	ErrInvalidLevel  = errors.New("invalid level")
	ErrUnknownTopic  = errors.New("unknown topic")
	ErrNoMethodology = errors.New("methodology is required")
	ErrNotStarted    = errors.New("learning session not started")
	ErrEmptyQuestion = errors.New("question is empty")
)

// Sender is the synchronous chat endpoint.
type Sender interface {
	SendMessage(ctx context.Context, req backend.ChatRequest) (string, error)
}

// Level values are the words the backend expects after activation.
type Level string

const (
	Beginner     Level = "principiante"
	Intermediate Level = "intermedio"
	Expert       Level = "experto"
)

// ParseLevel accepts either the backend word or its English name.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner", string(Beginner):
		return Beginner, nil
	case "intermediate", string(Intermediate):
		return Intermediate, nil
	case "expert", string(Expert):
		return Expert, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Topic is a canned question; %s is replaced with the methodology.
type Topic struct {
	Name     string `json:"name"`
	Question string `json:"question"`
}

var Topics = []Topic{
	{"what-is", "What is %s?"},
	{"roles", "What are the typical roles in %s?"},
	{"practices", "What are the key practices of %s?"},
	{"phases", "What are the phases of %s?"},
	{"ceremonies", "Which ceremonies are used in %s?"},
	{"artifacts", "Which artifacts are used in %s?"},
	{"metrics", "Which metrics are used in %s?"},
	{"when-to-use", "When is %s the best choice?"},
	{"when-to-avoid", "When should I avoid %s?"},
	{"advantages", "What are the advantages of %s?"},
	{"disadvantages", "What are the disadvantages of %s?"},
	{"examples", "Give me practical examples of %s"},
}

// Methodologies offered for study. Wider than the proposal set.
var Methodologies = []string{"Scrum", "Kanban", "XP", "Lean", "SAFe", "Scrumban", "Crystal", "FDD"}

func FindTopic(name string) (Topic, bool) {
	for _, t := range Topics {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}

var (
	embeddedReply = regexp.MustCompile(`\{"reply":"(.+?)","debug".+?\}`)
	navigation    = []*regexp.Regexp{
		regexp.MustCompile(`Puedes pedir[^.]*\.`),
		regexp.MustCompile(`Puedes escribir[^.]*\.`),
		regexp.MustCompile(`Pide[^.]*\.`),
	}
)

// Clean strips serialized metadata and the training-mode navigation hints
// from a reply.
func Clean(reply string) string {
	out := embeddedReply.ReplaceAllString(reply, "$1")
	out = strings.ReplaceAll(out, `\n`, "\n")
	for _, re := range navigation {
		out = re.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}

// Session is one training conversation. It is independent of the proposal
// conversation and never touches its history.
type Session struct {
	api Sender
	id  string

	mu          sync.Mutex
	started     bool
	level       Level
	methodology string
	turns       []conversation.Turn
}

func NewSession(api Sender) *Session {
	return &Session{api: api, id: "learn_" + uuid.NewString()}
}

func (s *Session) ID() string {
	return s.id
}

// Start activates training mode, sends the level and asks the topic question.
// The transcript is reset to that question and its answer.
func (s *Session) Start(ctx context.Context, level Level, methodology string, topic Topic) ([]conversation.Turn, error) {
	level, err := ParseLevel(string(level))
	if err != nil {
		return nil, err
	}
	methodology = strings.TrimSpace(methodology)
	if methodology == "" {
		return nil, ErrNoMethodology
	}
	if topic.Question == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic.Name)
	}

	for _, step := range []string{activation, string(level)} {
		if _, err := s.send(ctx, step); err != nil {
			return nil, fmt.Errorf("enter training mode: %w", err)
		}
	}
	question := fmt.Sprintf(topic.Question, methodology)
	reply, err := s.send(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("ask %s: %w", topic.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	s.level = level
	s.methodology = methodology
	s.turns = []conversation.Turn{
		conversation.NewTurn(conversation.RoleUser, question),
		conversation.NewTurn(conversation.RoleAssistant, Clean(reply)),
	}
	return append([]conversation.Turn(nil), s.turns...), nil
}

// Ask sends a follow-up question in an active session.
func (s *Session) Ask(ctx context.Context, text string) ([]conversation.Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuestion
	}
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil, ErrNotStarted
	}

	reply, err := s.send(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns,
		conversation.NewTurn(conversation.RoleUser, text),
		conversation.NewTurn(conversation.RoleAssistant, Clean(reply)),
	)
	return append([]conversation.Turn(nil), s.turns...), nil
}

// Transcript is the visible state of a session.
type Transcript struct {
	SessionID   string              `json:"session_id"`
	Active      bool                `json:"active"`
	Level       Level               `json:"level,omitempty"`
	Methodology string              `json:"methodology,omitempty"`
	Turns       []conversation.Turn `json:"turns"`
}

func (s *Session) Transcript() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append([]conversation.Turn{}, s.turns...)
	return Transcript{
		SessionID:   s.id,
		Active:      s.started,
		Level:       s.level,
		Methodology: s.methodology,
		Turns:       turns,
	}
}

func (s *Session) send(ctx context.Context, text string) (string, error) {
	return s.api.SendMessage(ctx, backend.ChatRequest{SessionID: s.id, Message: text})
}
