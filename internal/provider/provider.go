// Package provider translates generic conversation history into
// provider-specific completion calls.
//
// Each adapter maps an ordered message list, a model id and a decrypted
// credential onto exactly one outbound HTTP request, and extracts plain text
// from the provider's response shape. Adapters never retry and never cache.
// The registry dispatches on a string provider id; the provider set is fixed
// at build time.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// FallbackResponse is returned when a provider answers successfully but the
// response carries no generated text. Callers must treat it as a valid (if
// unhelpful) result, not an error.
const FallbackResponse = "No response generated"

// ErrUnknownProvider indicates a provider id with no registered adapter.
var ErrUnknownProvider = errors.New("unknown provider")

// Message is one conversation turn in provider-agnostic form.
// Role is one of "user", "assistant", "system".
type Message struct {
	Role    string
	Content string
}

// ModelInfo describes one selectable model of a provider.
type ModelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// Adapter is the contract every provider implementation satisfies.
type Adapter interface {
	// ID is the stable identifier used for registry dispatch ("openai", ...).
	ID() string
	// Name is the human-readable display name.
	Name() string
	// Models lists the provider's selectable models for the catalog endpoint.
	Models() []ModelInfo
	// Generate performs one completion call. The credential is the user's
	// decrypted secret: an API key for cloud providers, the server base URL
	// for the local provider. It must never be logged.
	Generate(ctx context.Context, history []Message, model, credential string) (string, error)
}

// HTTPError reports a non-success HTTP status from a provider API.
type HTTPError struct {
	Provider   string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s API error: %d %s", e.Provider, e.StatusCode, e.Status)
}

// TimeoutError reports a generation call cancelled at its deadline.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s request timed out after %s", e.Provider, e.Timeout)
	}
	return fmt.Sprintf("%s request timed out", e.Provider)
}
