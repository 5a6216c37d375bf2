package provider

import (
	"context"
	"errors"
	"testing"
)

// stubAdapter records Generate calls for registry dispatch tests.
type stubAdapter struct {
	id       string
	response string
	err      error
	calls    int
	lastHist []Message
}

func (s *stubAdapter) ID() string          { return s.id }
func (s *stubAdapter) Name() string        { return s.id }
func (s *stubAdapter) Models() []ModelInfo { return nil }

func (s *stubAdapter) Generate(ctx context.Context, history []Message, model, credential string) (string, error) {
	s.calls++
	s.lastHist = history
	return s.response, s.err
}

func TestRegistry_Get(t *testing.T) {
	a := &stubAdapter{id: "openai"}
	r := NewRegistry(a)

	got, err := r.Get("openai")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != a {
		t.Error("expected registered adapter back")
	}
}

func TestRegistry_Get_Unknown(t *testing.T) {
	r := NewRegistry(&stubAdapter{id: "openai"})

	_, err := r.Get("nonexistent")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestRegistry_List_Order(t *testing.T) {
	r := NewRegistry(
		&stubAdapter{id: "openai"},
		&stubAdapter{id: "anthropic"},
		&stubAdapter{id: "ollama"},
	)

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 adapters, got %d", len(list))
	}

	want := []string{"openai", "anthropic", "ollama"}
	for i, a := range list {
		if a.ID() != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], a.ID())
		}
	}
}

func TestRegistry_Register_Replaces(t *testing.T) {
	first := &stubAdapter{id: "openai", response: "first"}
	second := &stubAdapter{id: "openai", response: "second"}

	r := NewRegistry(first)
	r.Register(second)

	if len(r.List()) != 1 {
		t.Fatalf("expected 1 adapter after replacement, got %d", len(r.List()))
	}

	text, err := r.Generate(context.Background(), "openai", nil, "m", "k")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "second" {
		t.Errorf("expected replacement adapter to serve, got %q", text)
	}
}

func TestRegistry_Generate_Delegates(t *testing.T) {
	a := &stubAdapter{id: "openai", response: "hello"}
	r := NewRegistry(a)

	history := []Message{{Role: "user", Content: "hi"}}
	text, err := r.Generate(context.Background(), "openai", history, "gpt-4", "sk-key")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if text != "hello" {
		t.Errorf("expected adapter response, got %q", text)
	}
	if a.calls != 1 {
		t.Errorf("expected exactly one adapter call, got %d", a.calls)
	}
	if len(a.lastHist) != 1 || a.lastHist[0].Content != "hi" {
		t.Errorf("history not passed through: %+v", a.lastHist)
	}
}

func TestRegistry_Generate_PropagatesFailure(t *testing.T) {
	wantErr := &HTTPError{Provider: "OpenAI", StatusCode: 500, Status: "Internal Server Error"}
	r := NewRegistry(&stubAdapter{id: "openai", err: wantErr})

	_, err := r.Generate(context.Background(), "openai", nil, "m", "k")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError unchanged, got %v", err)
	}
	if httpErr.StatusCode != 500 {
		t.Errorf("expected status 500, got %d", httpErr.StatusCode)
	}
}

func TestRegistry_Generate_UnknownProvider(t *testing.T) {
	r := NewRegistry()

	_, err := r.Generate(context.Background(), "ghost", nil, "m", "k")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestDefaultRegistry_BuiltIns(t *testing.T) {
	r := DefaultRegistry(0)

	for _, id := range []string{"openai", "anthropic", "openrouter", "ollama"} {
		if _, err := r.Get(id); err != nil {
			t.Errorf("expected built-in adapter %s: %v", id, err)
		}
	}
}
