package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
)

type ToggleRequest struct {
	Completed bool `json:"completed"`
}

type LearningStartRequest struct {
	Level       string `json:"level"`
	Methodology string `json:"methodology"`
	Topic       string `json:"topic"`
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := s.view.Employees(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []backend.Employee{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var e backend.Employee
	if !decode(w, r, &e) {
		return
	}
	created, err := s.view.CreateEmployee(r.Context(), e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "employee")
	if !ok {
		return
	}
	var e backend.Employee
	if !decode(w, r, &e) {
		return
	}
	updated, err := s.view.UpdateEmployee(r.Context(), id, e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "employee")
	if !ok {
		return
	}
	if err := s.view.DeleteEmployee(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	user, err := s.view.Profile(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) openTracking(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	tr, err := s.view.OpenTracking(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (s *Server) proposalPhases(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "proposal")
	if !ok {
		return
	}
	phases, err := s.view.ProposalPhases(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if phases == nil {
		phases = []backend.PhasePlan{}
	}
	writeJSON(w, http.StatusOK, phases)
}

func (s *Server) startTracking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "proposal")
	if !ok {
		return
	}
	run, err := s.view.StartTracking(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) trackingRun(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "run", "run")
	if !ok {
		return
	}
	run, err := s.view.TrackingRun(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// toggleTask addresses the task by its position in the run; zero is valid.
func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathID(w, r, "run", "run")
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil || idx < 0 {
		writeError(w, http.StatusBadRequest, "invalid task index")
		return
	}
	var req ToggleRequest
	if !decode(w, r, &req) {
		return
	}
	run, err := s.view.ToggleTask(r.Context(), runID, idx, req.Completed)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) learningTranscript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view.Learning())
}

func (s *Server) startLearning(w http.ResponseWriter, r *http.Request) {
	var req LearningStartRequest
	if !decode(w, r, &req) {
		return
	}
	tr, err := s.view.StartLearning(r.Context(), req.Level, req.Methodology, req.Topic)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (s *Server) askLearning(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if !decode(w, r, &req) {
		return
	}
	tr, err := s.view.AskLearning(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}
