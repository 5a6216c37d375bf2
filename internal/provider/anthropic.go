package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com"

// Anthropic calls the Anthropic messages API. The SDK places the credential
// in the x-api-key header and sets the anthropic-version header.
type Anthropic struct {
	baseURL string
}

// NewAnthropic creates the Anthropic adapter. An empty baseURL uses the
// public API.
func NewAnthropic(baseURL string) *Anthropic {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &Anthropic{baseURL: baseURL}
}

func (a *Anthropic) ID() string   { return "anthropic" }
func (a *Anthropic) Name() string { return "Anthropic" }

func (a *Anthropic) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku", MaxTokens: 200000},
		{ID: "claude-3-sonnet-20240229", Name: "Claude 3 Sonnet", MaxTokens: 200000},
		{ID: "claude-3-opus-20240229", Name: "Claude 3 Opus", MaxTokens: 200000},
	}
}

// Generate performs a single non-streaming messages call. System turns in the
// history are lifted into the request's system blocks; user and assistant
// turns are preserved distinctly.
func (a *Anthropic) Generate(ctx context.Context, history []Message, model, credential string) (string, error) {
	// One outbound call per invocation: the SDK's built-in retries are off.
	client := anthropic.NewClient(
		option.WithBaseURL(a.baseURL),
		option.WithAPIKey(credential),
		option.WithMaxRetries(0),
	)

	messages, system := toAnthropicMessages(history)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: completionMaxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return "", &HTTPError{
				Provider:   a.Name(),
				StatusCode: apierr.StatusCode,
				Status:     http.StatusText(apierr.StatusCode),
			}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &TimeoutError{Provider: a.Name()}
		}
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return FallbackResponse, nil
}

func toAnthropicMessages(history []Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	messages := make([]anthropic.MessageParam, 0, len(history))
	var system []anthropic.TextBlockParam

	for _, m := range history {
		switch m.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case "user":
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	return messages, system
}
