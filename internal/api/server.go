// Package api exposes the conversation view over a local HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router *chi.Mux
	port   int
	view   View
	logger *slog.Logger
}

func NewServer(port int, apiToken string, view View, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		view:   view,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/proposer/status", s.status)

	router.Route("/api/v1/conversation", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Get("/", s.snapshot)
		r.Post("/mount", s.mount)
		r.Post("/send", s.send)
		r.Post("/actions", s.selectAction)
		r.Post("/modal", s.resolveModal)
		r.Delete("/modal", s.cancelModal)
		r.Post("/modal/rename", s.openRename)
		r.Get("/projects", s.listProjects)
		r.Post("/projects", s.saveProject)
		r.Post("/projects/{id}/load", s.loadProject)
		r.Delete("/projects/{id}", s.deleteProject)
		r.Post("/export", s.exportPDF)
		r.Post("/recommend", s.recommend)

		r.Get("/employees", s.listEmployees)
		r.Post("/employees", s.createEmployee)
		r.Put("/employees/{id}", s.updateEmployee)
		r.Delete("/employees/{id}", s.deleteEmployee)

		r.Get("/profile", s.profile)
		r.Post("/projects/{id}/tracking", s.openTracking)
		r.Get("/proposals/{id}/phases", s.proposalPhases)
		r.Post("/proposals/{id}/tracking", s.startTracking)
		r.Get("/tracking/{run}", s.trackingRun)
		r.Post("/tracking/{run}/tasks/{idx}", s.toggleTask)
	})

	router.Route("/api/v1/learning", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Get("/", s.learningTranscript)
		r.Post("/start", s.startLearning)
		r.Post("/ask", s.askLearning)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	snap := s.view.Snapshot()
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":     "proposer",
		"backend":   snap.Backend,
		"transport": snap.Transport.String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
