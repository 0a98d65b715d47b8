package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SendMessage is the request/response fallback for the chat channel.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (string, error) {
	var out ChatReply
	if err := c.do(ctx, http.MethodPost, "/chat/message", req, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

func (c *Client) Proposal(ctx context.Context, req ProposalRequest) (*Proposal, error) {
	var out Proposal
	if err := c.do(ctx, http.MethodPost, "/projects/proposal", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Recommend(ctx context.Context, req RecommendRequest) ([]Recommendation, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}
	var out []Recommendation
	if err := c.do(ctx, http.MethodPost, "/projects/recommend", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportChatPDF streams the rendered PDF into w and returns the byte count.
func (c *Client) ExportChatPDF(ctx context.Context, req ExportRequest, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, http.MethodPost, "/export/chat.pdf", req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read pdf: %w", err)
	}
	return n, nil
}

// FormatProposal renders a structured proposal as assistant text.
func FormatProposal(p *Proposal) string {
	team := make([]string, len(p.Team))
	for i, t := range p.Team {
		team[i] = fmt.Sprintf("%s x%g", t.Role, t.Count)
	}
	phases := make([]string, len(p.Phases))
	for i, ph := range p.Phases {
		phases[i] = fmt.Sprintf("%s (%d weeks)", ph.Name, ph.Weeks)
	}
	return strings.Join([]string{
		"📌 Methodology: " + p.Methodology,
		"👥 Team: " + strings.Join(team, ", "),
		"🧩 Phases: " + strings.Join(phases, " → "),
		fmt.Sprintf("💶 Budget: %.2f €", p.Budget.TotalEUR),
		"⚠️ Risks: " + strings.Join(p.Risks, "; "),
	}, "\n")
}
