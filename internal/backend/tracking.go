package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProposals returns the proposals stored for a session, oldest first.
func (c *Client) ListProposals(ctx context.Context, sessionID string) ([]StoredProposal, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}
	var out []StoredProposal
	path := "/projects/list?" + url.Values{"session_id": {sessionID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProposalPhases(ctx context.Context, proposalID int) ([]PhasePlan, error) {
	var out []PhasePlan
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/phases", proposalID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartTracking opens a tracking run for a proposal and returns its id.
func (c *Client) StartTracking(ctx context.Context, proposalID int, name string) (int, error) {
	var out struct {
		RunID int `json:"run_id"`
	}
	in := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/tracking", proposalID), in, &out); err != nil {
		return 0, err
	}
	if out.RunID == 0 {
		return 0, fmt.Errorf("empty run id")
	}
	return out.RunID, nil
}

func (c *Client) GetTracking(ctx context.Context, runID int) (*TrackingRun, error) {
	var out TrackingRun
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/tracking/%d", runID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleTask marks the task at index taskIdx of a run. The index is the
// task's position in the run, not its id.
func (c *Client) ToggleTask(ctx context.Context, runID, taskIdx int, completed bool) error {
	if taskIdx < 0 {
		return fmt.Errorf("%w: task index must not be negative", ErrValidation)
	}
	in := map[string]bool{"completed": completed}
	path := fmt.Sprintf("/projects/tracking/%d/tasks/%d/toggle", runID, taskIdx)
	return c.do(ctx, http.MethodPost, path, in, nil)
}
