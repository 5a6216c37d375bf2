package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// completionRequest mirrors the fields of the outbound request we assert on.
type completionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func openAISuccessBody(content string) string {
	return `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":` + mustJSON(content) + `},"finish_reason":"stop"}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenAI_Generate_Success(t *testing.T) {
	var gotAuth string
	var gotReq completionRequest
	var hits int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openAISuccessBody("hi")))
	}))
	defer srv.Close()

	a := NewOpenAI(srv.URL)
	history := []Message{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hey"},
	}

	text, err := a.Generate(context.Background(), history, "gpt-4", "sk-test")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "hi" {
		t.Errorf("expected content %q, got %q", "hi", text)
	}

	if hits != 1 {
		t.Errorf("expected exactly one outbound call, got %d", hits)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("expected bearer credential, got %q", gotAuth)
	}
	if gotReq.Model != "gpt-4" {
		t.Errorf("expected model gpt-4, got %q", gotReq.Model)
	}

	// System turns collapse into assistant; user stays user.
	wantRoles := []string{"assistant", "user", "assistant"}
	if len(gotReq.Messages) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(gotReq.Messages))
	}
	for i, want := range wantRoles {
		if gotReq.Messages[i].Role != want {
			t.Errorf("message %d: expected role %s, got %s", i, want, gotReq.Messages[i].Role)
		}
	}
}

func TestOpenAI_Generate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	a := NewOpenAI(srv.URL)
	text, err := a.Generate(context.Background(), []Message{{Role: "user", Content: "hello"}}, "gpt-4", "sk-test")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != FallbackResponse {
		t.Errorf("expected fallback response, got %q", text)
	}
}

func TestOpenAI_Generate_HTTPError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	a := NewOpenAI(srv.URL)
	_, err := a.Generate(context.Background(), []Message{{Role: "user", Content: "hello"}}, "gpt-4", "sk-test")

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", httpErr.StatusCode)
	}
	if httpErr.Provider != "OpenAI" {
		t.Errorf("expected provider OpenAI, got %s", httpErr.Provider)
	}
	if hits != 1 {
		t.Errorf("expected no retries, server hit %d times", hits)
	}
}

func TestOpenRouter_Generate_Success(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openAISuccessBody("routed")))
	}))
	defer srv.Close()

	a := NewOpenRouter(srv.URL)
	text, err := a.Generate(context.Background(), []Message{{Role: "user", Content: "hello"}}, "openai/gpt-4", "sk-or-test")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "routed" {
		t.Errorf("expected content %q, got %q", "routed", text)
	}
	if gotAuth != "Bearer sk-or-test" {
		t.Errorf("expected bearer credential, got %q", gotAuth)
	}
}
