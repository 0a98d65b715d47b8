package hermes

import "time"

// Subjects published by the chat view.
const (
	SubjectTurnAppended   = "proposer.conversation.turn"
	SubjectFinalProposal  = "proposer.conversation.final"
	SubjectTransportState = "proposer.transport.state"
)

// TurnEvent is emitted for every displayed turn.
type TurnEvent struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// FinalProposalEvent is emitted once per session when the terminal turn is
// recorded.
type FinalProposalEvent struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TransportEvent is emitted on every transport state change.
type TransportEvent struct {
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}
