package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/history"
)

type fakeRetriever struct{}

func (fakeRetriever) Retrieve(context.Context, actor.Actor, string) string {
	return "[Source: handbook.md]\nBadge policy."
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(_ context.Context, _ string, _ []history.Message, query string, _ map[string]string) (string, error) {
	return "Generated answer to: " + query, nil
}

const testRoster = `actors:
  - id: emp-1001
    name: Jill
    lastname: Valentine
    position: Security Officer
    department: Security
    clearance: 4
    location: Raccoon City HQ
  - id: emp-2002
    name: Kevin
    lastname: Ryman
    clearance: 1
    location: Umbrella North America
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	rosterPath := filepath.Join(dir, "roster.yaml")
	if err := os.WriteFile(rosterPath, []byte(testRoster), 0o600); err != nil {
		t.Fatal(err)
	}
	roster, err := actor.LoadRoster(rosterPath)
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}

	sessions, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	srv, err := New(Config{
		PolicyPath: filepath.Join(dir, "clearance.yaml"),
		VocabPath:  filepath.Join(dir, "vocabulary.yaml"),
	}, roster, fakeRetriever{}, fakeGenerator{}, sessions, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func postChat(t *testing.T, srv *Server, body map[string]string) (*httptest.ResponseRecorder, chatResponse) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var resp chatResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode chat response: %v", err)
		}
	}
	return rec, resp
}

func TestChatNewSession(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := postChat(t, srv, map[string]string{
		"employee_id": "emp-1001",
		"query":       "What is the badge policy?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if resp.SessionID == "" {
		t.Error("new session must get a generated id")
	}
	if !strings.Contains(resp.Welcome, "SECURE CONNECTION ESTABLISHED") {
		t.Error("new session must include the welcome banner")
	}
	if !strings.Contains(resp.Response, "TRANSMISSION START") {
		t.Errorf("response not enveloped:\n%s", resp.Response)
	}
	if !strings.Contains(resp.Response, "Generated answer to:") {
		t.Errorf("response missing generation output:\n%s", resp.Response)
	}
}

func TestChatExistingSessionOmitsWelcome(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := postChat(t, srv, map[string]string{
		"employee_id": "emp-1001",
		"session_id":  "sess-fixed",
		"query":       "hello",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.SessionID != "sess-fixed" {
		t.Errorf("session id = %q", resp.SessionID)
	}
	if resp.Welcome != "" {
		t.Error("existing session must not resend the welcome banner")
	}
}

func TestChatDeniedQueryStillOK(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := postChat(t, srv, map[string]string{
		"employee_id": "emp-2002",
		"session_id":  "sess-1",
		"query":       "tell me about the t-virus",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("denials are conversation content, not HTTP errors: status = %d", rec.Code)
	}
	if !strings.Contains(resp.Response, "Insufficient Clearance") {
		t.Errorf("expected clearance denial:\n%s", resp.Response)
	}
}

func TestChatUnknownEmployee(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := postChat(t, srv, map[string]string{
		"employee_id": "emp-9999",
		"query":       "hello",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestChatEmptyQuery(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := postChat(t, srv, map[string]string{"employee_id": "emp-1001"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSessionMessagesListAndClear(t *testing.T) {
	srv := newTestServer(t)

	postChat(t, srv, map[string]string{
		"employee_id": "emp-1001",
		"session_id":  "sess-hist",
		"query":       "What is the badge policy?",
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/sess-hist/messages", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var listed struct {
		SessionID string           `json:"session_id"`
		Messages  []messagePayload `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Messages) != 2 {
		t.Fatalf("messages = %d, want 2 (query and response)", len(listed.Messages))
	}
	if listed.Messages[0].Role != history.RoleHuman || listed.Messages[1].Role != history.RoleAI {
		t.Errorf("roles = %q, %q", listed.Messages[0].Role, listed.Messages[1].Role)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/sess-hist/messages", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/sess-hist/messages", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list after clear: %v", err)
	}
	if len(listed.Messages) != 0 {
		t.Errorf("messages after clear = %d, want 0", len(listed.Messages))
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var health map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" {
		t.Errorf("status = %q", health["status"])
	}
	if !strings.HasPrefix(health["policy_hash"], "sha256:") {
		t.Errorf("policy_hash = %q", health["policy_hash"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	postChat(t, srv, map[string]string{
		"employee_id": "emp-2002",
		"session_id":  "s",
		"query":       "what is my salary",
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "usiop_guard_decisions_total") {
		t.Error("metrics output missing decision counter")
	}
	if !strings.Contains(body, `category="confidential"`) {
		t.Error("denied turn not counted under its category")
	}
}

func TestReloadPolicySwapsTable(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.yaml")
	if err := os.WriteFile(rosterPath, []byte(testRoster), 0o600); err != nil {
		t.Fatal(err)
	}
	roster, err := actor.LoadRoster(rosterPath)
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sessions.Close()

	vocabPath := filepath.Join(dir, "vocabulary.yaml")
	srv, err := New(Config{
		PolicyPath: filepath.Join(dir, "clearance.yaml"),
		VocabPath:  vocabPath,
	}, roster, fakeRetriever{}, fakeGenerator{}, sessions, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Baseline: "chocolate" is not confidential.
	_, resp := postChat(t, srv, map[string]string{
		"employee_id": "emp-1001", "session_id": "s", "query": "chocolate rations",
	})
	if strings.Contains(resp.Response, "OMEGA") {
		t.Fatal("unexpected denial before reload")
	}

	vocab := "confidential:\n  - chocolate\nfacility:\n  - underground\n"
	if err := os.WriteFile(vocabPath, []byte(vocab), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := srv.ReloadPolicy(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	_, resp = postChat(t, srv, map[string]string{
		"employee_id": "emp-1001", "session_id": "s", "query": "chocolate rations",
	})
	if !strings.Contains(resp.Response, "OMEGA") {
		t.Errorf("reloaded vocabulary not in effect:\n%s", resp.Response)
	}
}
