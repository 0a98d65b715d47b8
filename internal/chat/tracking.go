package chat

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
)

// Tracking is the follow-up view of a saved project: the backend session it
// was continued under and the proposals generated in that session.
type Tracking struct {
	ProjectID int                      `json:"project_id"`
	SessionID string                   `json:"session_id"`
	Proposals []backend.StoredProposal `json:"proposals"`
}

// Profile returns the signed-in account.
func (v *View) Profile(ctx context.Context) (*backend.User, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	user, err := api.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

// OpenTracking continues a saved project under a fresh backend session and
// lists its proposals. The chat conversation is left untouched.
func (v *View) OpenTracking(ctx context.Context, projectID int) (*Tracking, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	sid, err := api.ContinueChat(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("continue project %d: %w", projectID, err)
	}
	proposals, err := api.ListProposals(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	if proposals == nil {
		proposals = []backend.StoredProposal{}
	}
	return &Tracking{ProjectID: projectID, SessionID: sid, Proposals: proposals}, nil
}

func (v *View) ProposalPhases(ctx context.Context, proposalID int) ([]backend.PhasePlan, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	phases, err := api.ProposalPhases(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("phases of proposal %d: %w", proposalID, err)
	}
	return phases, nil
}

// StartTracking opens a tracking run for a proposal and returns it with its
// tasks.
func (v *View) StartTracking(ctx context.Context, proposalID int) (*backend.TrackingRun, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	runID, err := api.StartTracking(ctx, proposalID, fmt.Sprintf("Tracking proposal %d", proposalID))
	if err != nil {
		return nil, fmt.Errorf("start tracking proposal %d: %w", proposalID, err)
	}
	v.logger.Info("tracking started", "proposal_id", proposalID, "run_id", runID)
	return v.TrackingRun(ctx, runID)
}

func (v *View) TrackingRun(ctx context.Context, runID int) (*backend.TrackingRun, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	run, err := api.GetTracking(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get tracking run %d: %w", runID, err)
	}
	return run, nil
}

// ToggleTask marks a task and returns the refreshed run.
func (v *View) ToggleTask(ctx context.Context, runID, taskIdx int, completed bool) (*backend.TrackingRun, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	if err := api.ToggleTask(ctx, runID, taskIdx, completed); err != nil {
		return nil, fmt.Errorf("toggle task %d of run %d: %w", taskIdx, runID, err)
	}
	return v.TrackingRun(ctx, runID)
}
