package provider

import "context"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter calls the OpenRouter API, which is OpenAI-compatible, with a
// bearer credential.
type OpenRouter struct {
	baseURL string
}

// NewOpenRouter creates the OpenRouter adapter. An empty baseURL uses the
// public API.
func NewOpenRouter(baseURL string) *OpenRouter {
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouter{baseURL: baseURL}
}

func (a *OpenRouter) ID() string   { return "openrouter" }
func (a *OpenRouter) Name() string { return "OpenRouter" }

func (a *OpenRouter) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "openai/gpt-3.5-turbo", Name: "GPT-3.5 Turbo (OpenRouter)", MaxTokens: 4096},
		{ID: "openai/gpt-4", Name: "GPT-4 (OpenRouter)", MaxTokens: 8192},
		{ID: "anthropic/claude-3-sonnet", Name: "Claude 3 Sonnet (OpenRouter)", MaxTokens: 200000},
		{ID: "meta-llama/llama-2-70b-chat", Name: "Llama 2 70B Chat", MaxTokens: 4096},
	}
}

// Generate performs a single non-streaming chat completion call.
func (a *OpenRouter) Generate(ctx context.Context, history []Message, model, credential string) (string, error) {
	return openAICompatGenerate(ctx, a.baseURL, a.Name(), history, model, credential)
}
