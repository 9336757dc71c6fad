package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGroqClientExplain(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "It looks like mild acne."}},
			},
		})
	}))
	defer srv.Close()

	client := NewGroqClient("test-key", srv.URL, "", nil)
	reply, err := client.Explain(context.Background(), nil, "is this acne?", onboardedConsultation())
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	if reply != "It looks like mild acne." {
		t.Errorf("unexpected reply: %q", reply)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	if gotReq.Model != defaultModel {
		t.Errorf("expected default model, got %q", gotReq.Model)
	}
	if gotReq.Temperature != 0 || gotReq.MaxTokens != maxTokens {
		t.Errorf("unexpected sampling params: %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("expected system + user messages, got %+v", gotReq.Messages)
	}
	if !strings.Contains(gotReq.Messages[1].Content, `"current_question": "is this acne?"`) {
		t.Errorf("payload missing from user prompt: %q", gotReq.Messages[1].Content)
	}
}

func TestGroqClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGroqClient("test-key", srv.URL, "", nil)
	_, err := client.Explain(context.Background(), nil, "hi", onboardedConsultation())
	if err == nil {
		t.Fatalf("expected an error for a non-200 response")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected the API body in the error, got %v", err)
	}
}
