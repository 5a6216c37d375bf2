package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"

	// Request shape shared by the OpenAI-compatible adapters.
	completionMaxTokens   = 1000
	completionTemperature = 0.7
)

// OpenAI calls the OpenAI chat completions API with a bearer credential.
type OpenAI struct {
	baseURL string
}

// NewOpenAI creates the OpenAI adapter. An empty baseURL uses the public API.
func NewOpenAI(baseURL string) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAI{baseURL: baseURL}
}

func (a *OpenAI) ID() string   { return "openai" }
func (a *OpenAI) Name() string { return "OpenAI" }

func (a *OpenAI) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", MaxTokens: 4096},
		{ID: "gpt-4", Name: "GPT-4", MaxTokens: 8192},
		{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", MaxTokens: 128000},
		{ID: "gpt-4o", Name: "GPT-4o", MaxTokens: 128000},
	}
}

// Generate performs a single non-streaming chat completion call.
func (a *OpenAI) Generate(ctx context.Context, history []Message, model, credential string) (string, error) {
	return openAICompatGenerate(ctx, a.baseURL, a.Name(), history, model, credential)
}

// openAICompatGenerate is shared by OpenAI and OpenRouter (OpenRouter's API
// is wire-compatible with OpenAI's chat completions endpoint).
func openAICompatGenerate(ctx context.Context, baseURL, displayName string, history []Message, model, credential string) (string, error) {
	// One outbound call per invocation: the SDK's built-in retries are off.
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(credential),
		option.WithMaxRetries(0),
	)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    toOpenAIMessages(history),
		MaxTokens:   openai.Int(completionMaxTokens),
		Temperature: openai.Float(completionTemperature),
	})
	if err != nil {
		return "", wrapOpenAIError(displayName, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return FallbackResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// toOpenAIMessages maps generic turns onto the OpenAI role taxonomy.
// User turns stay user; everything else (assistant, system) is sent as
// assistant, preserving the user/assistant distinction the API cares about.
func toOpenAIMessages(history []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		if m.Role == "user" {
			out = append(out, openai.UserMessage(m.Content))
		} else {
			out = append(out, openai.AssistantMessage(m.Content))
		}
	}
	return out
}

func wrapOpenAIError(displayName string, err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &HTTPError{
			Provider:   displayName,
			StatusCode: apierr.StatusCode,
			Status:     http.StatusText(apierr.StatusCode),
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: displayName, Timeout: time.Duration(0)}
	}
	return err
}
