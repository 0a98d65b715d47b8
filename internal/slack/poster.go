// Package slack posts final proposals to a review channel.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// highlightFields are the proposal lines copied into the channel message; the
// full text goes to the thread.
var highlightFields = []string{"methodology", "team", "budget"}

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostProposal posts a summary of a final proposal and the full text as a
// thread reply. Returns the message timestamp (ts) of the summary.
func (p *Poster) PostProposal(ctx context.Context, sessionID, title, content string) (string, error) {
	text := formatProposalMessage(sessionID, title, content)

	ts, err := p.post(ctx, map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": "Full proposal in thread",
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	p.logger.Info("posted proposal to slack", "ts", ts, "session_id", sessionID)

	if err := p.PostThread(ctx, ts, content); err != nil {
		p.logger.Warn("failed to post proposal thread", "ts", ts, "error", err)
	}
	return ts, nil
}

// PostThread posts a threaded reply to a message.
func (p *Poster) PostThread(ctx context.Context, threadTS, text string) error {
	_, err := p.post(ctx, map[string]any{
		"channel":   p.channel,
		"thread_ts": threadTS,
		"text":      text,
	})
	return err
}

func (p *Poster) post(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

func formatProposalMessage(sessionID, title, content string) string {
	var sb strings.Builder

	if title == "" {
		title = "Untitled project"
	}
	fmt.Fprintf(&sb, "*Final proposal:* %s\n", title)
	fmt.Fprintf(&sb, "*Session:* %s\n", sessionID)

	var found int
	for _, line := range strings.Split(content, "\n") {
		lower := strings.ToLower(line)
		for _, field := range highlightFields {
			if strings.Contains(lower, field+":") {
				if found == 0 {
					sb.WriteString("\n")
				}
				fmt.Fprintf(&sb, "%s\n", strings.TrimSpace(line))
				found++
				break
			}
		}
	}
	if found == 0 {
		sb.WriteString("\n_No methodology, team or budget lines in this proposal._")
	}

	return strings.TrimRight(sb.String(), "\n")
}
