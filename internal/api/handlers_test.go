package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reframe-app/reframe/internal/dialogue"
	"github.com/reframe-app/reframe/internal/models"
	"github.com/reframe-app/reframe/internal/store"
)

func TestGenerateActionHandler(t *testing.T) {
	client := &mockGenAI{response: `Here is one idea for you:
{"title":"Send one application","description":"Pick one role and apply tonight.","duration":20,"category":"career"}`}
	server, _ := newTestServer(client)

	body := strings.NewReader(`{"limiting_belief":"I am not qualified","category":"career"}`)
	req := httptest.NewRequest(http.MethodPost, "/actions/generate", body)
	rec := httptest.NewRecorder()

	server.generateActionHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Status != string(models.APIStatusOK) {
		t.Errorf("Expected status=%s, got status=%s, message=%s", models.APIStatusOK, response.Status, response.Message)
	}

	action, ok := response.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected result to be a map, got %T", response.Result)
	}
	if action["title"] != "Send one application" {
		t.Errorf("Expected generated title, got %v", action["title"])
	}
	if action["duration"] != float64(20) {
		t.Errorf("Expected duration 20, got %v", action["duration"])
	}
	if action["category"] != "career" {
		t.Errorf("Expected category career, got %v", action["category"])
	}
	if action["limiting_belief"] != "I am not qualified" {
		t.Errorf("Expected belief backfilled, got %v", action["limiting_belief"])
	}
	if action["id"] == "" || action["id"] == nil {
		t.Error("Expected a generated action ID")
	}
}

func TestGenerateActionHandlerProviderFailure(t *testing.T) {
	client := &mockGenAI{err: errors.New("provider down")}
	server, _ := newTestServer(client)

	body := strings.NewReader(`{"limiting_belief":"I never finish anything"}`)
	req := httptest.NewRequest(http.MethodPost, "/actions/generate", body)
	rec := httptest.NewRecorder()

	server.generateActionHandler(rec, req)

	// The generator never fails: provider errors yield the fallback card
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	action, ok := response.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected result to be a map, got %T", response.Result)
	}
	if action["title"] != "Challenge the thought" {
		t.Errorf("Expected fallback title, got %v", action["title"])
	}
	desc, _ := action["description"].(string)
	if !strings.Contains(desc, "I never finish anything") {
		t.Errorf("Expected belief interpolated into fallback description, got %q", desc)
	}
}

func TestGenerateActionHandlerValidation(t *testing.T) {
	server, _ := newTestServer(&mockGenAI{response: "ok"})

	tests := []struct {
		name string
		body string
	}{
		{"missing belief", `{"context":"some context"}`},
		{"invalid category", `{"limiting_belief":"I am stuck","category":"finance"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/actions/generate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			server.generateActionHandler(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestSuggestionsHandler(t *testing.T) {
	client := &mockGenAI{response: `["Yes, exactly", "Sort of", "Not really"]`}
	server, _ := newTestServer(client)

	body := strings.NewReader(`{"message":"Does that feel true to you?"}`)
	req := httptest.NewRequest(http.MethodPost, "/suggestions", body)
	rec := httptest.NewRecorder()

	server.suggestionsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	result, ok := response.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected result to be a map, got %T", response.Result)
	}
	suggestions, ok := result["suggestions"].([]interface{})
	if !ok {
		t.Fatalf("Expected suggestions to be a slice, got %T", result["suggestions"])
	}
	want := []string{"Yes, exactly", "Sort of", "Not really"}
	if len(suggestions) != len(want) {
		t.Fatalf("Expected %d suggestions, got %d", len(want), len(suggestions))
	}
	for i, s := range want {
		if suggestions[i] != s {
			t.Errorf("suggestion[%d] = %v, want %q", i, suggestions[i], s)
		}
	}
}

func TestSuggestionsHandlerProviderFailure(t *testing.T) {
	client := &mockGenAI{err: errors.New("provider down")}
	server, _ := newTestServer(client)

	body := strings.NewReader(`{"message":"Does that feel true to you?"}`)
	req := httptest.NewRequest(http.MethodPost, "/suggestions", body)
	rec := httptest.NewRecorder()

	server.suggestionsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	result, ok := response.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected result to be a map, got %T", response.Result)
	}
	suggestions, ok := result["suggestions"].([]interface{})
	if !ok {
		t.Fatalf("Expected suggestions to be a slice, got %T", result["suggestions"])
	}
	want := dialogue.FallbackSuggestions()
	if len(suggestions) != len(want) {
		t.Fatalf("Expected %d fallback suggestions, got %d", len(want), len(suggestions))
	}
	for i, s := range want {
		if suggestions[i] != s {
			t.Errorf("suggestion[%d] = %v, want %q", i, suggestions[i], s)
		}
	}
}

func TestSuggestionsHandlerEmptyMessage(t *testing.T) {
	server, _ := newTestServer(&mockGenAI{response: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/suggestions", strings.NewReader(`{"message":""}`))
	rec := httptest.NewRecorder()

	server.suggestionsHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	server, _ := newTestServer(&mockGenAI{response: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", health["status"])
	}
}

func TestHealthHandlerMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(&mockGenAI{response: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()

	server.healthHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestNewServerOptions(t *testing.T) {
	st := store.NewInMemoryStore()
	server := NewServer(st, nil, nil, nil)
	if server.addr != DefaultAddr {
		t.Errorf("Expected default addr %q, got %q", DefaultAddr, server.addr)
	}

	server = NewServer(st, nil, nil, nil, WithAddr(":9999"))
	if server.addr != ":9999" {
		t.Errorf("Expected addr :9999, got %q", server.addr)
	}
}
