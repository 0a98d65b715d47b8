// Package conversation owns the ordered turn list of a chat session and the
// rules deciding which backend turns are kept, hidden or dropped.
package conversation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// EncodeContent serializes turns into the persisted project content format.
func EncodeContent(turns []Turn) (string, error) {
	if turns == nil {
		turns = []Turn{}
	}
	data, err := json.Marshal(turns)
	if err != nil {
		return "", fmt.Errorf("marshal turns: %w", err)
	}
	return string(data), nil
}

// DecodeContent parses persisted project content. Older projects stored plain
// text, which is returned as a single assistant turn.
func DecodeContent(content string) ([]Turn, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		return []Turn{{Role: RoleAssistant, Content: content}}, nil
	}

	var turns []Turn
	if err := json.Unmarshal([]byte(trimmed), &turns); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	out := turns[:0]
	for _, t := range turns {
		if t.Role != RoleUser && t.Role != RoleAssistant {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
