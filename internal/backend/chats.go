package backend

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ListChats(ctx context.Context) ([]SavedChat, error) {
	var out []SavedChat
	if err := c.do(ctx, http.MethodGet, "/user/chats", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetChat(ctx context.Context, id int) (*SavedChat, error) {
	var out SavedChat
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/user/chats/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateChat(ctx context.Context, title, content string) (*SavedChat, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	var out SavedChat
	in := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPost, "/user/chats", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateChat sends only the non-nil fields, so a rename leaves content alone.
func (c *Client) UpdateChat(ctx context.Context, id int, upd SavedChatUpdate) (*SavedChat, error) {
	var out SavedChat
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/user/chats/%d", id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteChat(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/user/chats/%d", id), nil, nil)
}

// ContinueChat asks the backend for a fresh session id bound to a saved chat.
func (c *Client) ContinueChat(ctx context.Context, id int) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/user/chats/%d/continue", id), struct{}{}, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("empty session id")
	}
	return out.SessionID, nil
}
