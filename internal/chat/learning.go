package chat

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/proposer/internal/conversation"
	"github.com/MikeSquared-Agency/proposer/internal/learning"
)

// StartLearning begins a new training session on the current backend. Any
// previous training session is dropped.
func (v *View) StartLearning(ctx context.Context, level, methodology, topic string) (learning.Transcript, error) {
	api, err := v.requireAPI()
	if err != nil {
		return learning.Transcript{}, err
	}
	lvl, err := learning.ParseLevel(level)
	if err != nil {
		return learning.Transcript{}, err
	}
	t, ok := learning.FindTopic(topic)
	if !ok {
		return learning.Transcript{}, fmt.Errorf("%w: %q", learning.ErrUnknownTopic, topic)
	}

	s := learning.NewSession(api)
	if _, err := s.Start(ctx, lvl, methodology, t); err != nil {
		return learning.Transcript{}, err
	}
	v.mu.Lock()
	v.learn = s
	v.mu.Unlock()
	v.logger.Info("learning session started", "session_id", s.ID(), "level", lvl, "topic", t.Name)
	return s.Transcript(), nil
}

// AskLearning sends a follow-up question to the active training session.
func (v *View) AskLearning(ctx context.Context, text string) (learning.Transcript, error) {
	v.mu.Lock()
	s := v.learn
	v.mu.Unlock()
	if s == nil {
		return learning.Transcript{}, learning.ErrNotStarted
	}
	if _, err := s.Ask(ctx, text); err != nil {
		return learning.Transcript{}, err
	}
	return s.Transcript(), nil
}

// Learning returns the active training transcript, empty when none started.
func (v *View) Learning() learning.Transcript {
	v.mu.Lock()
	s := v.learn
	v.mu.Unlock()
	if s == nil {
		return learning.Transcript{Turns: []conversation.Turn{}}
	}
	return s.Transcript()
}
