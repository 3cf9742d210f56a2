package ai

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a minimal Provider for registry tests
type stubProvider struct {
	name string
}

func (s *stubProvider) ChatCompletion(_ context.Context, _ ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Content: s.name}, nil
}

func (s *stubProvider) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (s *stubProvider) ListModels(_ context.Context) ([]string, error) {
	return []string{s.name}, nil
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Model() string { return s.name + "-model" }

func TestRegistry_ActiveReturnsInitialProvider(t *testing.T) {
	first := &stubProvider{name: "first"}
	reg := NewRegistry(first)

	assert.Same(t, Provider(first), reg.Active())
}

func TestRegistry_SwapReplacesProvider(t *testing.T) {
	reg := NewRegistry(&stubProvider{name: "first"})
	second := &stubProvider{name: "second"}

	reg.Swap(second)

	assert.Equal(t, "second", reg.Active().Name())
}

func TestRegistry_HandleSurvivesSwap(t *testing.T) {
	first := &stubProvider{name: "first"}
	reg := NewRegistry(first)

	// A caller that already holds a handle keeps using the old provider,
	// a fresh Active call after the swap sees the new one.
	held := reg.Active()
	reg.Swap(&stubProvider{name: "second"})

	resp, err := held.ChatCompletion(context.Background(), ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Content)
	assert.Equal(t, "second", reg.Active().Name())
}

func TestRegistry_ConcurrentReadersAndSwaps(t *testing.T) {
	reg := NewRegistry(&stubProvider{name: "a"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p := reg.Active()
			assert.NotNil(t, p)
			_, err := p.GenerateEmbedding(context.Background(), "x")
			assert.NoError(t, err)
		}()
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				reg.Swap(&stubProvider{name: "b"})
			} else {
				reg.Swap(&stubProvider{name: "a"})
			}
		}(i)
	}
	wg.Wait()

	name := reg.Active().Name()
	assert.Contains(t, []string{"a", "b"}, name)
}

func TestNewProviderFromSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     string
	}{
		{"openai", Settings{ProviderType: "openai", APIKey: "sk-test"}, "openai"},
		{"ollama", Settings{ProviderType: "ollama"}, "ollama"},
		{"unknown falls back to ollama", Settings{ProviderType: "lemonade"}, "ollama"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProviderFromSettings(tt.settings)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}
