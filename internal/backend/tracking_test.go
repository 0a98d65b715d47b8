package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Not authenticated"}`))
			return
		}
		w.Write([]byte(`{"id":3,"email":"ana@example.com","full_name":"Ana"}`))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, nil).Me(context.Background()); err == nil || Detail(err) != "Not authenticated" {
		t.Errorf("expected auth error, got %v", err)
	}
	user, err := NewClient(server.URL, staticToken("tok")).Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 3 || user.Email != "ana@example.com" || user.FullName != "Ana" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestListProposals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("session_id"); got != "saved-4 x" {
			t.Errorf("unexpected session_id %q", got)
		}
		w.Write([]byte(`[{"id":9,"methodology":"Scrum","requirements":"API"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	list, err := c.ListProposals(context.Background(), "saved-4 x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != 9 || list[0].Methodology != "Scrum" {
		t.Errorf("unexpected proposals: %+v", list)
	}
	if _, err := c.ListProposals(context.Background(), " "); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestTrackingLifecycle(t *testing.T) {
	var toggled struct {
		Completed bool `json:"completed"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/9/phases", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"Discovery","weeks":2,"checklist":["Kickoff","Backlog"]}]`))
	})
	mux.HandleFunc("/projects/9/tracking", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if in["name"] != "Tracking proposal 9" {
			t.Errorf("unexpected name %q", in["name"])
		}
		w.Write([]byte(`{"run_id":5}`))
	})
	mux.HandleFunc("/projects/tracking/5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":5,"name":"Tracking proposal 9","tasks":[{"id":11,"text":"Kickoff","completed":false,"phase_idx":0}]}`))
	})
	mux.HandleFunc("/projects/tracking/5/tasks/0/toggle", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&toggled)
		w.Write([]byte(`{"ok":true}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	ctx := context.Background()

	phases, err := c.ProposalPhases(ctx, 9)
	if err != nil {
		t.Fatalf("phases: %v", err)
	}
	if len(phases) != 1 || phases[0].Weeks != 2 || len(phases[0].Checklist) != 2 {
		t.Errorf("unexpected phases: %+v", phases)
	}

	runID, err := c.StartTracking(ctx, 9, "Tracking proposal 9")
	if err != nil || runID != 5 {
		t.Fatalf("start tracking: id=%d err=%v", runID, err)
	}
	run, err := c.GetTracking(ctx, runID)
	if err != nil {
		t.Fatalf("get tracking: %v", err)
	}
	if len(run.Tasks) != 1 || run.Tasks[0].Text != "Kickoff" {
		t.Errorf("unexpected run: %+v", run)
	}

	if err := c.ToggleTask(ctx, runID, 0, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Error("expected completed=true in toggle body")
	}
	if err := c.ToggleTask(ctx, runID, -1, true); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestProposalPhases_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Proposal not found"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil).ProposalPhases(context.Background(), 404)
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
