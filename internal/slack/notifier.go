package slack

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MikeSquared-Agency/proposer/internal/hermes"
)

const notifyTimeout = 15 * time.Second

// HandleFinalProposal is a NATS handler for hermes.SubjectFinalProposal.
func (p *Poster) HandleFinalProposal(subject string, data []byte) {
	var evt hermes.FinalProposalEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse final proposal event", "subject", subject, "error", err)
		return
	}
	if evt.Content == "" {
		p.logger.Warn("final proposal event without content", "session_id", evt.SessionID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if _, err := p.PostProposal(ctx, evt.SessionID, evt.Title, evt.Content); err != nil {
		p.logger.Error("failed to post final proposal", "session_id", evt.SessionID, "error", err)
	}
}
