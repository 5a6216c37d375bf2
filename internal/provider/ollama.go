package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// defaultOllamaTimeout bounds local generation calls. Local inference can
// stall indefinitely, so the call is cancelled at this ceiling.
const defaultOllamaTimeout = 300 * time.Second

// ollamaSystemPrompt is injected ahead of every local conversation. Local
// models tend to be chattier and less instruction-following than the hosted
// ones, so they get an explicit instruction.
const ollamaSystemPrompt = "You are a helpful assistant. Answer the user's questions directly and concisely."

// Ollama calls a self-hosted Ollama server. The stored credential is the
// server base URL itself; no auth header is sent.
type Ollama struct {
	timeout    time.Duration
	httpClient *http.Client
}

// NewOllama creates the local provider adapter. A zero timeout uses the
// default ceiling.
func NewOllama(timeout time.Duration) *Ollama {
	if timeout <= 0 {
		timeout = defaultOllamaTimeout
	}
	return &Ollama{
		timeout:    timeout,
		httpClient: http.DefaultClient,
	}
}

func (a *Ollama) ID() string   { return "ollama" }
func (a *Ollama) Name() string { return "Ollama" }

func (a *Ollama) Models() []ModelInfo {
	// Local model availability depends on what the user has pulled; this
	// list covers the common defaults shown in the picker.
	return []ModelInfo{
		{ID: "llama3.1", Name: "Llama 3.1"},
		{ID: "qwen2.5", Name: "Qwen 2.5"},
		{ID: "mistral", Name: "Mistral"},
	}
}

// Generate performs a single non-streaming chat call against the server URL
// held in the credential. Thinking output is disabled and the call is bounded
// by a hard deadline.
func (a *Ollama) Generate(ctx context.Context, history []Message, model, credential string) (string, error) {
	baseURL, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(credential), "/"))
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return "", fmt.Errorf("invalid Ollama server URL in credential")
	}

	client := api.NewClient(baseURL, a.httpClient)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: a.toOllamaMessages(history),
		Stream:   &stream,
		Think:    &api.ThinkValue{Value: false},
	}

	var sb strings.Builder
	err = client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			status := statusErr.Status
			if status == "" {
				status = http.StatusText(statusErr.StatusCode)
			}
			return "", &HTTPError{
				Provider:   a.Name(),
				StatusCode: statusErr.StatusCode,
				Status:     status,
			}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &TimeoutError{Provider: a.Name(), Timeout: a.timeout}
		}
		return "", err
	}

	if sb.Len() == 0 {
		return FallbackResponse, nil
	}
	return sb.String(), nil
}

// toOllamaMessages passes roles through unchanged and injects the fixed
// system instruction ahead of history.
func (a *Ollama) toOllamaMessages(history []Message) []api.Message {
	out := make([]api.Message, 0, len(history)+1)
	out = append(out, api.Message{Role: "system", Content: ollamaSystemPrompt})
	for _, m := range history {
		out = append(out, api.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
