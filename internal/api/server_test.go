package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/chat"
	"github.com/MikeSquared-Agency/proposer/internal/conversation"
	"github.com/MikeSquared-Agency/proposer/internal/learning"
	"github.com/MikeSquared-Agency/proposer/internal/locator"
	"github.com/MikeSquared-Agency/proposer/internal/transport"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend is a minimal proposal API without a WebSocket endpoint.
type fakeBackend struct {
	mu        sync.Mutex
	chats     map[int]backend.SavedChat
	employees map[int]backend.Employee
	nextID    int
	completed map[int]bool
}

func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	fb := &fakeBackend{
		chats:     map[int]backend.SavedChat{},
		employees: map[int]backend.Employee{},
		nextID:    1,
		completed: map[int]bool{},
	}
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, backend.HealthStatus{Status: "ok", App: "proposals"})
	})
	r.Post("/chat/message", func(w http.ResponseWriter, r *http.Request) {
		var req backend.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, backend.ChatReply{Reply: "You said: " + req.Message, SessionID: req.SessionID})
	})
	r.Get("/user/chats", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		out := []backend.SavedChat{}
		for _, c := range fb.chats {
			out = append(out, c)
		}
		writeJSON(w, http.StatusOK, out)
	})
	r.Post("/user/chats", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		c := backend.SavedChat{ID: fb.nextID, Title: in.Title, Content: in.Content}
		fb.chats[c.ID] = c
		fb.nextID++
		writeJSON(w, http.StatusOK, c)
	})
	r.Get("/user/chats/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		fb.mu.Lock()
		c, ok := fb.chats[id]
		fb.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Chat not found"})
			return
		}
		writeJSON(w, http.StatusOK, c)
	})
	r.Put("/user/chats/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		var upd backend.SavedChatUpdate
		json.NewDecoder(r.Body).Decode(&upd)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		c, ok := fb.chats[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Chat not found"})
			return
		}
		if upd.Title != nil {
			c.Title = *upd.Title
		}
		if upd.Content != nil {
			c.Content = *upd.Content
		}
		fb.chats[id] = c
		writeJSON(w, http.StatusOK, c)
	})
	r.Post("/user/chats/{id}/continue", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"session_id": "continued-" + chi.URLParam(r, "id")})
	})
	r.Post("/export/chat.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	})
	r.Post("/projects/recommend", func(w http.ResponseWriter, r *http.Request) {
		var req backend.RecommendRequest
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, []backend.Recommendation{{ID: 7, Methodology: "Kanban", Requirements: req.Query, Similarity: 0.8}})
	})

	r.Get("/user/employees", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		out := []backend.Employee{}
		for _, e := range fb.employees {
			out = append(out, e)
		}
		writeJSON(w, http.StatusOK, out)
	})
	r.Post("/user/employees", func(w http.ResponseWriter, r *http.Request) {
		var e backend.Employee
		json.NewDecoder(r.Body).Decode(&e)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		e.ID = fb.nextID
		fb.nextID++
		fb.employees[e.ID] = e
		writeJSON(w, http.StatusOK, e)
	})
	r.Put("/user/employees/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		var e backend.Employee
		json.NewDecoder(r.Body).Decode(&e)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if _, ok := fb.employees[id]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Employee not found"})
			return
		}
		e.ID = id
		fb.employees[id] = e
		writeJSON(w, http.StatusOK, e)
	})
	r.Delete("/user/employees/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		fb.mu.Lock()
		defer fb.mu.Unlock()
		delete(fb.employees, id)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/user/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, backend.User{ID: 1, Email: "ana@example.com", FullName: "Ana"})
	})
	r.Get("/projects/list", func(w http.ResponseWriter, r *http.Request) {
		sid := r.URL.Query().Get("session_id")
		writeJSON(w, http.StatusOK, []backend.StoredProposal{{ID: 9, SessionID: sid, Methodology: "Scrum"}})
	})
	r.Get("/projects/{id}/phases", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "9" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Proposal not found"})
			return
		}
		writeJSON(w, http.StatusOK, []backend.PhasePlan{{Name: "Discovery", Weeks: 2, Checklist: []string{"Kickoff"}}})
	})
	r.Post("/projects/{id}/tracking", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"run_id": 5})
	})
	r.Get("/projects/tracking/{run}", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		writeJSON(w, http.StatusOK, backend.TrackingRun{
			ID:    5,
			Name:  "Tracking proposal 9",
			Tasks: []backend.TrackingTask{{ID: 1, Text: "Kickoff", Completed: fb.completed[0]}},
		})
	})
	r.Post("/projects/tracking/{run}/tasks/{idx}/toggle", func(w http.ResponseWriter, r *http.Request) {
		idx, _ := strconv.Atoi(chi.URLParam(r, "idx"))
		var in struct {
			Completed bool `json:"completed"`
		}
		json.NewDecoder(r.Body).Decode(&in)
		fb.mu.Lock()
		fb.completed[idx] = in.Completed
		fb.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, token string, candidates []string) *Server {
	t.Helper()
	logger := discardLogger()
	view := chat.New(chat.Options{
		Resolver: locator.New(candidates, time.Second, logger),
		Dialer:   transport.NewWebSocketDialer(time.Second),
		NewAPI:   func(base string) chat.API { return backend.NewClient(base, nil) },
		Logger:   logger,
	})
	t.Cleanup(view.Close)
	return NewServer(8760, token, view, logger)
}

type snapshotBody struct {
	SessionID  string              `json:"session_id"`
	Backend    string              `json:"backend"`
	Transport  string              `json:"transport"`
	Turns      []conversation.Turn `json:"turns"`
	Terminated bool                `json:"terminated"`
	Modal      *chat.Modal         `json:"modal"`
	ProjectID  int                 `json:"project_id"`
	Title      string              `json:"title"`
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) snapshotBody {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var snap snapshotBody
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	return snap
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, "", nil)

	w := do(t, srv, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, "", nil)

	w := do(t, srv, "GET", "/api/v1/proposer/status", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["agent"] != "proposer" {
		t.Errorf("expected agent proposer, got %q", body["agent"])
	}
	if body["transport"] != "unresolved" {
		t.Errorf("expected transport unresolved, got %q", body["transport"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(t, "", nil)

	w := do(t, srv, "GET", "/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer(t, "secret", nil)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/conversation/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}

	if w := do(t, srv, "GET", "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health must stay public, got %d", w.Code)
	}
}

func TestConversationFlow(t *testing.T) {
	be := newFakeBackend(t)
	srv := newTestServer(t, "", []string{be.URL})

	snap := decodeSnapshot(t, do(t, srv, "POST", "/api/v1/conversation/mount", `{"session_id":"s1"}`))
	if snap.SessionID != "s1" || snap.Backend != be.URL {
		t.Errorf("unexpected mount snapshot %+v", snap)
	}
	if snap.Transport != "closed-fallback" {
		t.Errorf("expected closed-fallback without a socket endpoint, got %q", snap.Transport)
	}
	if len(snap.Turns) != 2 || snap.Turns[1].Content != transport.FallbackNotice {
		t.Errorf("expected greeting and fallback notice, got %+v", snap.Turns)
	}

	snap = decodeSnapshot(t, do(t, srv, "POST", "/api/v1/conversation/send", `{"text":"hello"}`))
	last := snap.Turns[len(snap.Turns)-1]
	if last.Role != conversation.RoleAssistant || last.Content != "You said: hello" {
		t.Errorf("unexpected last turn %+v", last)
	}

	if w := do(t, srv, "POST", "/api/v1/conversation/send", `{"text":"  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank text: expected 400, got %d", w.Code)
	}
	if w := do(t, srv, "POST", "/api/v1/conversation/send", `not json`); w.Code != http.StatusBadRequest {
		t.Errorf("bad JSON: expected 400, got %d", w.Code)
	}
}

func TestActionsAndModalEndpoints(t *testing.T) {
	be := newFakeBackend(t)
	srv := newTestServer(t, "", []string{be.URL})
	do(t, srv, "POST", "/api/v1/conversation/mount", `{"session_id":"s1"}`)

	if w := do(t, srv, "POST", "/api/v1/conversation/actions", `{"kind":"launch-rocket"}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown action: expected 400, got %d", w.Code)
	}
	if w := do(t, srv, "POST", "/api/v1/conversation/modal", `{"input":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("no modal: expected 400, got %d", w.Code)
	}

	snap := decodeSnapshot(t, do(t, srv, "POST", "/api/v1/conversation/actions", `{"kind":"manual-entry"}`))
	if snap.Modal == nil || snap.Modal.Kind != chat.ModalManualEntry {
		t.Fatalf("expected manual entry modal, got %+v", snap.Modal)
	}
	snap = decodeSnapshot(t, do(t, srv, "POST", "/api/v1/conversation/modal", `{"input":"PM x1"}`))
	if snap.Modal != nil {
		t.Error("modal should be closed")
	}
	if last := snap.Turns[len(snap.Turns)-1]; last.Content != "You said: Team: PM x1" {
		t.Errorf("unexpected last turn %q", last.Content)
	}

	snap = decodeSnapshot(t, do(t, srv, "POST", "/api/v1/conversation/actions", `{"kind":"set-contingency","number":10}`))
	if last := snap.Turns[len(snap.Turns)-1]; last.Content != "You said: Set the contingency to 10%" {
		t.Errorf("unexpected last turn %q", last.Content)
	}
}

func TestProjectEndpoints(t *testing.T) {
	be := newFakeBackend(t)
	srv := newTestServer(t, "", []string{be.URL})
	do(t, srv, "POST", "/api/v1/conversation/mount", `{"session_id":"s1"}`)
	do(t, srv, "POST", "/api/v1/conversation/send", `{"text":"web shop"}`)

	w := do(t, srv, "POST", "/api/v1/conversation/projects", `{"title":"Shop"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var saved backend.SavedChat
	json.NewDecoder(w.Body).Decode(&saved)
	if saved.ID == 0 || saved.Title != "Shop" {
		t.Fatalf("unexpected saved project %+v", saved)
	}

	w = do(t, srv, "GET", "/api/v1/conversation/projects", "")
	var list []backend.SavedChat
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != 1 {
		t.Errorf("expected 1 project, got %d", len(list))
	}

	snap := decodeSnapshot(t, do(t, srv, "POST", fmt.Sprintf("/api/v1/conversation/projects/%d/load", saved.ID), ""))
	if snap.SessionID != fmt.Sprintf("continued-%d", saved.ID) || snap.Title != "Shop" {
		t.Errorf("unexpected loaded snapshot %+v", snap)
	}

	if w := do(t, srv, "POST", "/api/v1/conversation/projects/abc/load", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", w.Code)
	}
	w = do(t, srv, "POST", "/api/v1/conversation/projects/999/load", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing project: expected 404, got %d", w.Code)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["error"] != "Chat not found" {
		t.Errorf("expected backend detail, got %q", body["error"])
	}
}

func TestExportAndRecommendEndpoints(t *testing.T) {
	be := newFakeBackend(t)
	srv := newTestServer(t, "", []string{be.URL})
	do(t, srv, "POST", "/api/v1/conversation/mount", `{"session_id":"s1"}`)

	w := do(t, srv, "POST", "/api/v1/conversation/export", `{"title":"Shop"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("unexpected body %q", w.Body.String())
	}

	w = do(t, srv, "POST", "/api/v1/conversation/recommend", `{"query":"shop","top_k":3}`)
	var recs []backend.Recommendation
	json.NewDecoder(w.Body).Decode(&recs)
	if w.Code != http.StatusOK || len(recs) != 1 || recs[0].Requirements != "shop" {
		t.Errorf("unexpected recommend response %d %+v", w.Code, recs)
	}

	if w := do(t, srv, "POST", "/api/v1/conversation/recommend", `{"query":""}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty query: expected 400, got %d", w.Code)
	}
}

func TestBackendUnavailable(t *testing.T) {
	srv := newTestServer(t, "", nil)
	snap := decodeSnapshot(t, do(t, srv, "POST", "/api/v1/conversation/mount", `{"session_id":"s1"}`))
	if snap.Transport != "unresolved" || snap.Backend != "" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	if w := do(t, srv, "GET", "/api/v1/conversation/projects", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}

	snap = decodeSnapshot(t, do(t, srv, "POST", "/api/v1/conversation/send", `{"text":"hi"}`))
	if last := snap.Turns[len(snap.Turns)-1]; last.Content != chat.NoticeNoBackend {
		t.Errorf("expected backend notice, got %q", last.Content)
	}
}

func TestEmployeeEndpoints(t *testing.T) {
	be := newFakeBackend(t)
	srv := newTestServer(t, "", []string{be.URL})
	do(t, srv, "POST", "/api/v1/conversation/mount", `{"session_id":"s1"}`)

	w := do(t, srv, "POST", "/api/v1/conversation/employees", `{"name":"Ana","role":"QA","availability_pct":50}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created backend.Employee
	json.NewDecoder(w.Body).Decode(&created)
	if created.ID == 0 || created.Name != "Ana" {
		t.Fatalf("unexpected employee %+v", created)
	}

	if w := do(t, srv, "POST", "/api/v1/conversation/employees", `{"name":"","role":"QA"}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid employee: expected 400, got %d", w.Code)
	}

	path := fmt.Sprintf("/api/v1/conversation/employees/%d", created.ID)
	w = do(t, srv, "PUT", path, `{"name":"Ana","role":"Tech Lead","availability_pct":80}`)
	var updated backend.Employee
	json.NewDecoder(w.Body).Decode(&updated)
	if w.Code != http.StatusOK || updated.Role != "Tech Lead" {
		t.Errorf("update: %d %+v", w.Code, updated)
	}
	if w := do(t, srv, "PUT", "/api/v1/conversation/employees/999", `{"name":"X","role":"QA"}`); w.Code != http.StatusNotFound {
		t.Errorf("missing employee: expected 404, got %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/v1/conversation/employees", "")
	var list []backend.Employee
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != 1 {
		t.Errorf("expected 1 employee, got %d", len(list))
	}

	if w := do(t, srv, "DELETE", path, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/v1/conversation/employees/x", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", w.Code)
	}
}

func TestRenameModalEndpoint(t *testing.T) {
	be := newFakeBackend(t)
	srv := newTestServer(t, "", []string{be.URL})
	do(t, srv, "POST", "/api/v1/conversation/mount", `{"session_id":"s1"}`)
	do(t, srv, "POST", "/api/v1/conversation/projects", `{"title":"Shop"}`)

	snap := decodeSnapshot(t, do(t, srv, "POST", "/api/v1/conversation/modal/rename", ""))
	if snap.Modal == nil || snap.Modal.Kind != chat.ModalRename {
		t.Fatalf("expected rename modal, got %+v", snap.Modal)
	}
	snap = decodeSnapshot(t, do(t, srv, "POST", "/api/v1/conversation/modal", `{"input":"Online shop"}`))
	if snap.Modal != nil || snap.Title != "Online shop" {
		t.Errorf("expected renamed project, got title %q modal %+v", snap.Title, snap.Modal)
	}
}

func TestTrackingEndpoints(t *testing.T) {
	be := newFakeBackend(t)
	srv := newTestServer(t, "", []string{be.URL})
	do(t, srv, "POST", "/api/v1/conversation/mount", `{"session_id":"s1"}`)

	w := do(t, srv, "POST", "/api/v1/conversation/projects/3/tracking", "")
	var tr chat.Tracking
	json.NewDecoder(w.Body).Decode(&tr)
	if w.Code != http.StatusOK || tr.SessionID != "continued-3" || len(tr.Proposals) != 1 {
		t.Fatalf("open tracking: %d %+v", w.Code, tr)
	}

	w = do(t, srv, "GET", "/api/v1/conversation/proposals/9/phases", "")
	var phases []backend.PhasePlan
	json.NewDecoder(w.Body).Decode(&phases)
	if w.Code != http.StatusOK || len(phases) != 1 || phases[0].Checklist[0] != "Kickoff" {
		t.Errorf("phases: %d %+v", w.Code, phases)
	}
	if w := do(t, srv, "GET", "/api/v1/conversation/proposals/8/phases", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing proposal: expected 404, got %d", w.Code)
	}

	w = do(t, srv, "POST", "/api/v1/conversation/proposals/9/tracking", "")
	var run backend.TrackingRun
	json.NewDecoder(w.Body).Decode(&run)
	if w.Code != http.StatusOK || run.ID != 5 || run.Tasks[0].Completed {
		t.Fatalf("start tracking: %d %+v", w.Code, run)
	}

	w = do(t, srv, "POST", "/api/v1/conversation/tracking/5/tasks/0", `{"completed":true}`)
	json.NewDecoder(w.Body).Decode(&run)
	if w.Code != http.StatusOK || !run.Tasks[0].Completed {
		t.Errorf("toggle: %d %+v", w.Code, run)
	}
	if w := do(t, srv, "POST", "/api/v1/conversation/tracking/5/tasks/-1", `{"completed":true}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative index: expected 400, got %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/v1/conversation/profile", "")
	var user backend.User
	json.NewDecoder(w.Body).Decode(&user)
	if w.Code != http.StatusOK || user.Email != "ana@example.com" {
		t.Errorf("profile: %d %+v", w.Code, user)
	}
}

func TestLearningEndpoints(t *testing.T) {
	be := newFakeBackend(t)
	srv := newTestServer(t, "", []string{be.URL})
	do(t, srv, "POST", "/api/v1/conversation/mount", `{"session_id":"s1"}`)

	if w := do(t, srv, "POST", "/api/v1/learning/ask", `{"text":"why?"}`); w.Code != http.StatusConflict {
		t.Errorf("ask before start: expected 409, got %d", w.Code)
	}
	if w := do(t, srv, "POST", "/api/v1/learning/start", `{"level":"guru","methodology":"Scrum","topic":"roles"}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad level: expected 400, got %d", w.Code)
	}

	w := do(t, srv, "POST", "/api/v1/learning/start", `{"level":"beginner","methodology":"Scrum","topic":"roles"}`)
	var tr learning.Transcript
	json.NewDecoder(w.Body).Decode(&tr)
	if w.Code != http.StatusOK || !tr.Active || len(tr.Turns) != 2 {
		t.Fatalf("start: %d %+v", w.Code, tr)
	}
	if want := "You said: What are the typical roles in Scrum?"; tr.Turns[1].Content != want {
		t.Errorf("answer = %q, want %q", tr.Turns[1].Content, want)
	}

	w = do(t, srv, "POST", "/api/v1/learning/ask", `{"text":"And in Kanban?"}`)
	json.NewDecoder(w.Body).Decode(&tr)
	if w.Code != http.StatusOK || len(tr.Turns) != 4 {
		t.Errorf("ask: %d %+v", w.Code, tr)
	}

	w = do(t, srv, "GET", "/api/v1/learning/", "")
	json.NewDecoder(w.Body).Decode(&tr)
	if len(tr.Turns) != 4 || tr.SessionID == "s1" {
		t.Errorf("transcript: %+v", tr)
	}
}
