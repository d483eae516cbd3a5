package vault

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

// fakeVault is an in-memory vault server for one or more users.
type fakeVault struct {
	mu    sync.Mutex
	token string
	notes map[string][]model.Note
	goals map[string]map[string]float64
	seq   int
}

func newFakeVault(token string) *fakeVault {
	return &fakeVault{
		token: token,
		notes: make(map[string][]model.Note),
		goals: make(map[string]map[string]float64),
	}
}

func (f *fakeVault) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/{user}/notes", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		user := r.PathValue("user")
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(notesResponse{Notes: f.notes[user]})
		case http.MethodPost:
			var req noteRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.seq++
			n := model.Note{
				ID:        "n" + string(rune('0'+f.seq)),
				Text:      req.Text,
				Owner:     req.Owner,
				Urgent:    req.Urgent,
				Status:    req.Status,
				Due:       req.Due,
				CreatedAt: time.Date(2024, 1, f.seq, 0, 0, 0, 0, time.UTC),
			}
			f.notes[user] = append(f.notes[user], n)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(n)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/v1/users/{user}/goals", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		user := r.PathValue("user")
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			g, ok := f.goals[user]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(goalsDoc{Goals: g})
		case http.MethodPut:
			var doc goalsDoc
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.goals[user] = doc.Goals
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func (f *fakeVault) authorized(w http.ResponseWriter, r *http.Request) bool {
	if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}
	return true
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantNil bool
	}{
		{"empty", "", true},
		{"spaces", "   ", true},
		{"no scheme", "vault.local", true},
		{"ftp", "ftp://vault.local", true},
		{"http", "http://vault.local/", false},
		{"https", "https://vault.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.baseURL, "", "")
			if (c == nil) != tt.wantNil {
				t.Errorf("NewClient(%q) nil = %v, want %v", tt.baseURL, c == nil, tt.wantNil)
			}
			if c != nil && c.UserID() != "demo-user" {
				t.Errorf("UserID = %q, want demo-user", c.UserID())
			}
		})
	}
}

func TestNotesRoundTrip(t *testing.T) {
	fv := newFakeVault("secret")
	srv := httptest.NewServer(fv.handler())
	defer srv.Close()

	c := NewClient(srv.URL, "alice", "secret")
	ctx := context.Background()

	first, err := c.PostNote(ctx, model.Note{Text: "  check ad spend  ", Urgent: true})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" || first.Text != "check ad spend" || first.Owner != "alice" {
		t.Errorf("saved note = %+v", first)
	}
	if _, err := c.PostNote(ctx, model.Note{Text: "raise prices", Due: "2024-02-01"}); err != nil {
		t.Fatal(err)
	}

	notes, err := c.Notes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(notes))
	}
	if notes[0].Text != "raise prices" {
		t.Errorf("first note = %q, want newest first", notes[0].Text)
	}
	if notes[0].Due != "2024-02-01" {
		t.Errorf("due = %q", notes[0].Due)
	}

	other := NewClient(srv.URL, "bob", "secret")
	bobNotes, err := other.Notes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(bobNotes) != 0 {
		t.Errorf("bob notes = %d, want 0", len(bobNotes))
	}
}

func TestPostNote_Empty(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", "")
	if _, err := c.PostNote(context.Background(), model.Note{Text: "  "}); !errors.Is(err, ErrEmptyNote) {
		t.Errorf("err = %v, want ErrEmptyNote", err)
	}
}

func TestGoalsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(newFakeVault("").handler())
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	ctx := context.Background()

	got, err := c.Goals(ctx)
	if err != nil {
		t.Fatalf("Goals before put: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("goals = %v, want none", got)
	}

	want := []model.GoalTarget{
		{Metric: model.FieldRevenue, Target: 120000},
		{Metric: model.FieldConversionRate, Target: 0.1},
	}
	if err := c.PutGoals(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err = c.Goals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("goals = %v", got)
	}
	// Sorted by metric name.
	if got[0].Metric != model.FieldConversionRate || got[1].Target != 120000 {
		t.Errorf("goals = %+v", got)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"server error", http.StatusBadGateway, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", "").Notes(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", "").Notes(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestDecodeNotes_BareArray(t *testing.T) {
	notes, err := decodeNotes([]byte(`[{"id":"1","text":"hi","created_at":"2024-01-01T00:00:00Z"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Text != "hi" {
		t.Errorf("notes = %+v", notes)
	}
	if _, err := decodeNotes([]byte(`{"notes": 5}`)); err == nil {
		t.Error("expected parse error")
	}
}
