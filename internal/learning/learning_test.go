package learning

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/conversation"
)

type scriptedSender struct {
	mu    sync.Mutex
	reqs  []backend.ChatRequest
	reply string
	err   error
}

func (s *scriptedSender) SendMessage(_ context.Context, req backend.ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"beginner", Beginner, false},
		{"Intermedio", Intermediate, false},
		{" expert ", Expert, false},
		{"guru", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLevel) {
					t.Errorf("expected invalid level, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Scrum uses sprints.  ", "Scrum uses sprints."},
		{"escaped newlines", `Line one\nLine two`, "Line one\nLine two"},
		{"embedded reply", `{"reply":"Kanban limits WIP","debug":"trace"}`, "Kanban limits WIP"},
		{"navigation hints", "Scrum has three roles. Puedes pedir más ejemplos. Pide: fases.", "Scrum has three roles."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSessionStart(t *testing.T) {
	api := &scriptedSender{reply: "Scrum is a framework. Puedes escribir otra pregunta."}
	s := NewSession(api)
	topic, ok := FindTopic("what-is")
	if !ok {
		t.Fatal("what-is topic missing")
	}

	turns, err := s.Start(context.Background(), Intermediate, "Scrum", topic)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(api.reqs) != 3 {
		t.Fatalf("expected 3 backend calls, got %d", len(api.reqs))
	}
	wantMsgs := []string{"aprender", "intermedio", "What is Scrum?"}
	for i, req := range api.reqs {
		if req.Message != wantMsgs[i] {
			t.Errorf("call %d: message %q, want %q", i, req.Message, wantMsgs[i])
		}
		if req.SessionID != s.ID() || !strings.HasPrefix(req.SessionID, "learn_") {
			t.Errorf("call %d: unexpected session id %q", i, req.SessionID)
		}
	}
	if len(turns) != 2 || turns[0].Role != conversation.RoleUser || turns[1].Content != "Scrum is a framework." {
		t.Errorf("unexpected transcript %+v", turns)
	}

	tr := s.Transcript()
	if !tr.Active || tr.Level != Intermediate || tr.Methodology != "Scrum" {
		t.Errorf("unexpected transcript state %+v", tr)
	}
}

func TestSessionStartValidation(t *testing.T) {
	api := &scriptedSender{reply: "x"}
	s := NewSession(api)
	topic := Topics[0]

	if _, err := s.Start(context.Background(), Level("guru"), "Scrum", topic); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("expected invalid level, got %v", err)
	}
	if _, err := s.Start(context.Background(), Beginner, " ", topic); !errors.Is(err, ErrNoMethodology) {
		t.Errorf("expected missing methodology, got %v", err)
	}
	if _, err := s.Start(context.Background(), Beginner, "Scrum", Topic{Name: "nope"}); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("expected unknown topic, got %v", err)
	}
	if len(api.reqs) != 0 {
		t.Errorf("validation failures must not reach the backend, got %d calls", len(api.reqs))
	}
}

func TestSessionAsk(t *testing.T) {
	api := &scriptedSender{reply: "answer"}
	s := NewSession(api)

	if _, err := s.Ask(context.Background(), "why?"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected not started, got %v", err)
	}
	if _, err := s.Start(context.Background(), Beginner, "Kanban", Topics[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Ask(context.Background(), "  "); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("expected empty question, got %v", err)
	}

	turns, err := s.Ask(context.Background(), "How do I limit WIP?")
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 4 || turns[2].Content != "How do I limit WIP?" || turns[3].Content != "answer" {
		t.Errorf("unexpected transcript %+v", turns)
	}
}

func TestSessionBackendError(t *testing.T) {
	api := &scriptedSender{err: &backend.APIError{StatusCode: 500, Detail: "model unavailable"}}
	s := NewSession(api)

	_, err := s.Start(context.Background(), Expert, "XP", Topics[1])
	if err == nil || backend.Detail(err) != "model unavailable" {
		t.Errorf("expected backend detail, got %v", err)
	}
	if s.Transcript().Active {
		t.Error("failed start must leave the session inactive")
	}
}
