package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"medibot-ai/internal/agent"
	"medibot-ai/internal/auth"
	"medibot-ai/internal/consultation"
	"medibot-ai/internal/report"
	"medibot-ai/internal/server"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	repo := consultation.NewMemoryRepository()
	users := auth.NewFileStore(filepath.Join(t.TempDir(), "user_db.json"))
	sessions := auth.NewSessionManager(func(owner string) *consultation.Store {
		return consultation.NewStore(consultation.SaverFor(repo, owner))
	})
	svc := consultation.NewService(nil, agent.NewMockClient(), nil)

	return server.New(users, sessions, svc, report.NewService(), nil)
}

func doJSON(t *testing.T, srv http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, srv http.Handler) string {
	t.Helper()

	w := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "demo@demo.com", "password": "demo123", "name": "Demo User",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "demo@demo.com", "password": "demo123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" || resp.Name != "Demo User" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	return resp.Token
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/consultations", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateConsultationOpensWithGreeting(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/api/consultations", token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var c consultation.Consultation
	if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode consultation: %v", err)
	}
	if c.ID != 1 || c.Title != "Consultation 1" {
		t.Errorf("unexpected consultation: id=%d title=%q", c.ID, c.Title)
	}
	if c.OnboardingStep != 2 {
		t.Errorf("expected step 2 after the greeting, got %d", c.OnboardingStep)
	}
	if len(c.Messages) != 1 || !strings.Contains(c.Messages[0].Content, "full name") {
		t.Errorf("expected the greeting message, got %+v", c.Messages)
	}
}

func TestOnboardingAndChatOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	// First message auto-heals the empty store, fires the greeting, and
	// treats the input as the name answer.
	var resp struct {
		Reply          *consultation.Message `json:"reply"`
		Onboarding     bool                  `json:"onboarding"`
		OnboardingStep int                   `json:"onboarding_step"`
	}

	steps := []struct {
		text       string
		wantStep   int
		onboarding bool
		contains   string
	}{
		{"Jordan", 3, true, "Nice to meet you, Jordan"},
		{"34", 4, true, "skin type"},
		{"oily", 5, true, "skin issue"},
		{"acne", 999, false, "You're all set"},
	}
	for _, step := range steps {
		w := doJSON(t, srv, http.MethodPost, "/api/consultations/message", token, map[string]string{"text": step.text})
		if w.Code != http.StatusOK {
			t.Fatalf("message %q: expected 200, got %d, body=%s", step.text, w.Code, w.Body.String())
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode message response: %v", err)
		}
		if resp.OnboardingStep != step.wantStep {
			t.Errorf("message %q: expected step %d, got %d", step.text, step.wantStep, resp.OnboardingStep)
		}
		if resp.Onboarding != step.onboarding {
			t.Errorf("message %q: expected onboarding=%v", step.text, step.onboarding)
		}
		if !strings.Contains(resp.Reply.Content, step.contains) {
			t.Errorf("message %q: reply %q missing %q", step.text, resp.Reply.Content, step.contains)
		}
	}

	// Free chat after onboarding goes through the LLM.
	w := doJSON(t, srv, http.MethodPost, "/api/consultations/message", token, map[string]string{"text": "my forehead keeps breaking out"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode chat response: %v", err)
	}
	if resp.Onboarding || resp.Reply.Role != consultation.RoleAssistant || resp.Reply.Content == "" {
		t.Errorf("expected a chat reply, got %+v", resp)
	}
}

func TestSwitchAndRenameEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	for i := 0; i < 2; i++ {
		if w := doJSON(t, srv, http.MethodPost, "/api/consultations", token, nil); w.Code != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d", w.Code)
		}
	}

	if w := doJSON(t, srv, http.MethodPost, "/api/consultations/switch", token, map[string]int{"index": 7}); w.Code != http.StatusBadRequest {
		t.Errorf("switch out of range: expected 400, got %d", w.Code)
	}
	if w := doJSON(t, srv, http.MethodPost, "/api/consultations/switch", token, map[string]int{"index": 0}); w.Code != http.StatusOK {
		t.Errorf("switch: expected 200, got %d", w.Code)
	}
	if w := doJSON(t, srv, http.MethodPost, "/api/consultations/rename", token, map[string]any{"index": 0, "title": "Rash follow-up"}); w.Code != http.StatusOK {
		t.Errorf("rename: expected 200, got %d", w.Code)
	}

	w := doJSON(t, srv, http.MethodGet, "/api/consultations", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list struct {
		Consultations []struct {
			Title string `json:"title"`
		} `json:"consultations"`
		ActiveIndex int `json:"active_index"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Consultations) != 2 || list.ActiveIndex != 0 {
		t.Errorf("unexpected list: %+v", list)
	}
	if list.Consultations[0].Title != "Rash follow-up" {
		t.Errorf("rename did not stick: %+v", list.Consultations[0])
	}
}

func TestLogoutDropsSession(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	if w := doJSON(t, srv, http.MethodPost, "/api/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	if w := doJSON(t, srv, http.MethodGet, "/api/consultations", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", w.Code)
	}
}
