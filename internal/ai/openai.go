package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to the OpenAI platform or any OpenAI-compatible server
// (a custom base URL covers local inference gateways that expose /v1).
type OpenAIProvider struct {
	client     *openai.Client
	chatModel  string
	embedModel openai.EmbeddingModel
}

// NewOpenAIProvider creates a provider against the given endpoint. An empty
// baseURL targets the OpenAI platform; empty model names fall back to
// gpt-4o-mini and text-embedding-3-small.
func NewOpenAIProvider(baseURL, apiKey, chatModel, embedModel string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	if embedModel == "" {
		embedModel = string(openai.SmallEmbedding3)
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(cfg),
		chatModel:  chatModel,
		embedModel: openai.EmbeddingModel(embedModel),
	}
}

// Name returns the provider identifier used in provenance records
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the configured chat model id
func (p *OpenAIProvider) Model() string {
	return p.chatModel
}

// ChatCompletion runs a single chat completion call
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.chatModel
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	oaReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.ResponseFormat == ResponseFormatJSON {
		oaReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, oaReq)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion returned no choices")
	}

	return &ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// GenerateEmbedding returns the embedding vector for one text
func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: p.embedModel,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding returned no data")
	}
	return resp.Data[0].Embedding, nil
}

// ListModels returns the model ids available on the endpoint
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	resp, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai list models failed: %w", err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.ID)
	}
	return names, nil
}
