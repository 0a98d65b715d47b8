package backend

import "encoding/json"

type HealthStatus struct {
	Status string `json:"status"`
	App    string `json:"app"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// SavedChat is a persisted project. Content holds the serialized turn list.
type SavedChat struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

type SavedChatUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type Employee struct {
	ID              int    `json:"id,omitempty"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	Skills          string `json:"skills"`
	Seniority       string `json:"seniority,omitempty"`
	AvailabilityPct int    `json:"availability_pct"`
}

// ChatRequest is the HTTP fallback payload. Over the WebSocket only Message
// is sent, as a plain text frame.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Phase     string `json:"phase,omitempty"`
}

type ChatReply struct {
	Reply     string          `json:"reply"`
	SessionID string          `json:"session_id,omitempty"`
	Debug     json.RawMessage `json:"debug,omitempty"`
}

type ProposalRequest struct {
	SessionID    string `json:"session_id"`
	Requirements string `json:"requirements"`
}

type TeamMember struct {
	Role  string  `json:"role"`
	Count float64 `json:"count"`
}

type Phase struct {
	Name  string `json:"name"`
	Weeks int    `json:"weeks"`
}

type Budget struct {
	TotalEUR float64 `json:"total_eur"`
}

type Proposal struct {
	Methodology string       `json:"methodology"`
	Team        []TeamMember `json:"team"`
	Phases      []Phase      `json:"phases"`
	Budget      Budget       `json:"budget"`
	Risks       []string     `json:"risks"`
}

type RecommendRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type Recommendation struct {
	ID           int     `json:"id"`
	Methodology  string  `json:"methodology"`
	Requirements string  `json:"requirements"`
	Similarity   float64 `json:"similarity"`
	PDFURL       string  `json:"pdf_url"`
	Phases       []Phase `json:"phases,omitempty"`
}

// ExportMessage is one turn as the PDF exporter expects it.
type ExportMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ExportRequest struct {
	Title    string          `json:"title"`
	Messages []ExportMessage `json:"messages"`
}

// User is the authenticated account as returned by /user/me.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// StoredProposal is a proposal the backend persisted for a session.
type StoredProposal struct {
	ID           int    `json:"id"`
	SessionID    string `json:"session_id,omitempty"`
	Methodology  string `json:"methodology"`
	Requirements string `json:"requirements"`
}

// PhasePlan is a proposal phase with its suggested checklist.
type PhasePlan struct {
	Name      string   `json:"name"`
	Weeks     int      `json:"weeks,omitempty"`
	Checklist []string `json:"checklist,omitempty"`
}

type TrackingTask struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	PhaseIdx  int    `json:"phase_idx"`
}

// TrackingRun is a follow-up checklist started from a proposal.
type TrackingRun struct {
	ID         int            `json:"id"`
	ProposalID int            `json:"proposal_id,omitempty"`
	Name       string         `json:"name"`
	StartedAt  string         `json:"started_at,omitempty"`
	Tasks      []TrackingTask `json:"tasks"`
}
