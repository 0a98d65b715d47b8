package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/proposer/internal/actions"
	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/chat"
	"github.com/MikeSquared-Agency/proposer/internal/conversation"
	"github.com/MikeSquared-Agency/proposer/internal/learning"
)

// View is the conversation view model served by the API.
type View interface {
	Snapshot() chat.Snapshot
	Mount(ctx context.Context, sessionID string, history []conversation.Turn) string
	Send(ctx context.Context, text string) error
	Select(ctx context.Context, a actions.Action) error
	ResolveModal(ctx context.Context, input string) error
	CancelModal()
	OpenRename()
	LoadProject(ctx context.Context, id int) (string, error)
	SaveProject(ctx context.Context, title string) (*backend.SavedChat, error)
	DeleteProject(ctx context.Context, id int) error
	ListProjects(ctx context.Context) ([]backend.SavedChat, error)
	ExportPDF(ctx context.Context, title string, w io.Writer) (int64, error)
	Recommend(ctx context.Context, query string, topK int) ([]backend.Recommendation, error)

	Employees(ctx context.Context) ([]backend.Employee, error)
	CreateEmployee(ctx context.Context, e backend.Employee) (*backend.Employee, error)
	UpdateEmployee(ctx context.Context, id int, e backend.Employee) (*backend.Employee, error)
	DeleteEmployee(ctx context.Context, id int) error

	Profile(ctx context.Context) (*backend.User, error)
	OpenTracking(ctx context.Context, projectID int) (*chat.Tracking, error)
	ProposalPhases(ctx context.Context, proposalID int) ([]backend.PhasePlan, error)
	StartTracking(ctx context.Context, proposalID int) (*backend.TrackingRun, error)
	TrackingRun(ctx context.Context, runID int) (*backend.TrackingRun, error)
	ToggleTask(ctx context.Context, runID, taskIdx int, completed bool) (*backend.TrackingRun, error)

	StartLearning(ctx context.Context, level, methodology, topic string) (learning.Transcript, error)
	AskLearning(ctx context.Context, text string) (learning.Transcript, error)
	Learning() learning.Transcript
}

var _ View = (*chat.View)(nil)

type MountRequest struct {
	SessionID string              `json:"session_id"`
	Turns     []conversation.Turn `json:"turns,omitempty"`
}

type SendRequest struct {
	Text string `json:"text"`
}

type ModalRequest struct {
	Input string `json:"input"`
}

type SaveRequest struct {
	Title string `json:"title"`
}

type RecommendRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// statusFor maps view and backend errors to HTTP status codes.
func statusFor(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrUnknownAction),
		errors.Is(err, chat.ErrNoModal),
		errors.Is(err, backend.ErrValidation),
		errors.Is(err, learning.ErrInvalidLevel),
		errors.Is(err, learning.ErrUnknownTopic),
		errors.Is(err, learning.ErrNoMethodology),
		errors.Is(err, learning.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrConversationEnded),
		errors.Is(err, learning.ErrNotStarted):
		return http.StatusConflict
	case errors.Is(err, chat.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case backend.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("conversation request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, backend.Detail(err))
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) mount(w http.ResponseWriter, r *http.Request) {
	var req MountRequest
	if !decode(w, r, &req) {
		return
	}
	s.view.Mount(r.Context(), req.SessionID, req.Turns)
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.view.Send(r.Context(), req.Text); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) selectAction(w http.ResponseWriter, r *http.Request) {
	var a actions.Action
	if !decode(w, r, &a) {
		return
	}
	if err := s.view.Select(r.Context(), a); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) resolveModal(w http.ResponseWriter, r *http.Request) {
	var req ModalRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.view.ResolveModal(r.Context(), req.Input); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) openRename(w http.ResponseWriter, r *http.Request) {
	s.view.OpenRename()
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) cancelModal(w http.ResponseWriter, r *http.Request) {
	s.view.CancelModal()
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.view.ListProjects(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if projects == nil {
		projects = []backend.SavedChat{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) saveProject(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !decode(w, r, &req) {
		return
	}
	saved, err := s.view.SaveProject(r.Context(), req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func projectID(w http.ResponseWriter, r *http.Request) (int, bool) {
	return pathID(w, r, "id", "project")
}

// pathID reads a positive integer URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, param, what string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+what+" id")
		return 0, false
	}
	return id, true
}

func (s *Server) loadProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if _, err := s.view.LoadProject(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := s.view.DeleteProject(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportPDF buffers the document so a backend failure can still be reported
// as JSON.
func (s *Server) exportPDF(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !decode(w, r, &req) {
		return
	}
	var buf bytes.Buffer
	if _, err := s.view.ExportPDF(r.Context(), req.Title, &buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="proposal.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !decode(w, r, &req) {
		return
	}
	recs, err := s.view.Recommend(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []backend.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}
