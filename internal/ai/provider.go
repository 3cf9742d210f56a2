// Package ai defines the provider abstraction for the generative backend and
// the hot-swappable registry that holds the active provider.
package ai

import "context"

// ResponseFormat selects the output mode requested from the model
type ResponseFormat string

const (
	// ResponseFormatJSON asks the provider for strict-JSON output
	ResponseFormatJSON ResponseFormat = "json_object"
	// ResponseFormatText asks the provider for plain text output
	ResponseFormatText ResponseFormat = "text"
)

// Message is a single chat message in a completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries everything a provider needs for one completion call.
// Model is optional; when empty the provider's configured model is used.
type ChatRequest struct {
	Messages       []Message      `json:"messages"`
	Temperature    float32        `json:"temperature"`
	ResponseFormat ResponseFormat `json:"response_format,omitempty"`
	Model          string         `json:"model,omitempty"`
}

// Usage reports the token counts consumed by a completion call
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// ChatResponse is the provider-neutral result of a completion call
type ChatResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Provider is the capability contract every AI backend implements. All calls
// take a context and return explicit errors; implementations must be safe for
// concurrent use.
type Provider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	ListModels(ctx context.Context) ([]string, error)
	Name() string
	Model() string
}

// Settings holds the configuration needed to construct a provider. Values come
// from the environment at startup and from app_config rows at runtime.
type Settings struct {
	ProviderType   string // "ollama" or "openai" (any OpenAI-compatible server)
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
}

// NewProviderFromSettings builds the concrete provider selected by the
// settings. Unknown provider types fall back to ollama, the local-first
// default.
func NewProviderFromSettings(s Settings) Provider {
	switch s.ProviderType {
	case "openai":
		return NewOpenAIProvider(s.BaseURL, s.APIKey, s.ChatModel, s.EmbeddingModel)
	default:
		return NewOllamaProvider(s.BaseURL, s.ChatModel, s.EmbeddingModel)
	}
}
