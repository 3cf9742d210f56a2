package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaProvider talks to a local Ollama server over its native HTTP API
type OllamaProvider struct {
	client     *http.Client
	baseURL    string
	chatModel  string
	embedModel string
}

// NewOllamaProvider creates a provider for the given Ollama endpoint. Empty
// arguments fall back to the local default server and llama3/all-minilm.
func NewOllamaProvider(baseURL, chatModel, embedModel string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if chatModel == "" {
		chatModel = "llama3"
	}
	if embedModel == "" {
		embedModel = "all-minilm"
	}

	return &OllamaProvider{
		client:     &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		chatModel:  chatModel,
		embedModel: embedModel,
	}
}

// Name returns the provider identifier used in provenance records
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Model returns the configured chat model id
func (p *OllamaProvider) Model() string {
	return p.chatModel
}

func (p *OllamaProvider) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// ChatCompletion runs a single chat call against /api/chat
func (p *OllamaProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.chatModel
	}

	payload := map[string]any{
		"model":    model,
		"messages": req.Messages,
		"stream":   false,
		"options": map[string]any{
			"temperature": req.Temperature,
		},
	}
	// Ollama's structured output switch is a top-level format field
	if req.ResponseFormat == ResponseFormatJSON {
		payload["format"] = "json"
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		PromptEvalCount int `json:"prompt_eval_count"`
		EvalCount       int `json:"eval_count"`
	}
	if err := p.post(ctx, "/api/chat", payload, &result); err != nil {
		return nil, err
	}

	return &ChatResponse{
		Content: result.Message.Content,
		Usage: Usage{
			PromptTokens:     result.PromptEvalCount,
			CompletionTokens: result.EvalCount,
		},
	}, nil
}

// GenerateEmbedding returns the embedding vector for one text via /api/embeddings
func (p *OllamaProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model":  p.embedModel,
		"prompt": text,
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := p.post(ctx, "/api/embeddings", payload, &result); err != nil {
		return nil, err
	}
	return result.Embedding, nil
}

// ListModels returns the locally installed model names via /api/tags
func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
