package extract

import (
	"context"
	"testing"

	"mailfacts/internal/ai"
	"mailfacts/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns canned chat responses in order and records calls
type scriptedProvider struct {
	responses []string
	calls     int
	requests  []ai.ChatRequest
}

func (s *scriptedProvider) ChatCompletion(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	s.requests = append(s.requests, req)
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return &ai.ChatResponse{Content: s.responses[idx]}, nil
}

func (s *scriptedProvider) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (s *scriptedProvider) ListModels(_ context.Context) ([]string, error) {
	return nil, nil
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Model() string { return "scripted-chat" }

func newTestExtractor(t *testing.T, provider ai.Provider) *Extractor {
	t.Helper()
	e, err := NewExtractor(ai.NewRegistry(provider), zerolog.Nop())
	require.NoError(t, err)
	return e
}

const validResponse = `{
	"primary_type": "update",
	"intent": "inform",
	"urgency": "medium",
	"sentiment": "neutral",
	"waiting_on": "them",
	"summary": "Weekly status",
	"key_points": ["on track"],
	"needs_response": false,
	"confidence": 0.9
}`

func TestExtractWithRepair_ValidFirstPass(t *testing.T) {
	provider := &scriptedProvider{responses: []string{validResponse}}
	e := newTestExtractor(t, provider)

	out, err := e.ExtractWithRepair(context.Background(), "some email text")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls, "no repair call expected for valid output")
	assert.Equal(t, "Weekly status", out["summary"])

	// Extraction runs pinned to temperature 0 in strict-JSON mode
	req := provider.requests[0]
	assert.Equal(t, float32(0), req.Temperature)
	assert.Equal(t, ai.ResponseFormatJSON, req.ResponseFormat)
	assert.Equal(t, "system", req.Messages[0].Role)
}

func TestExtractWithRepair_NotJSONAtAll(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"I'm sorry, I can't do that", "still not json"}}
	e := newTestExtractor(t, provider)

	_, err := e.ExtractWithRepair(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, IsRepairFailed(err))
	assert.Equal(t, 2, provider.calls, "exactly one repair call before failing")
}

func TestExtractWithRepair_RepairedContentWins(t *testing.T) {
	invalid := `{"summary": "missing required fields"}`
	repaired := `{
		"primary_type": "request",
		"summary": "Fixed by repair",
		"needs_response": true,
		"confidence": 0.5
	}`
	provider := &scriptedProvider{responses: []string{invalid, repaired}}
	e := newTestExtractor(t, provider)

	out, err := e.ExtractWithRepair(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
	assert.Equal(t, "Fixed by repair", out["summary"], "repaired content committed, not the original")

	// The repair pass carries the invalid output back to the model
	assert.Contains(t, provider.requests[1].Messages[1].Content, "missing required fields")
	assert.Contains(t, provider.requests[1].Messages[0].Content, "repair")
}

func TestExtractWithRepair_SecondFailureIsFinal(t *testing.T) {
	invalid := `{"summary": "still missing required fields"}`
	provider := &scriptedProvider{responses: []string{invalid, invalid, invalid}}
	e := newTestExtractor(t, provider)

	_, err := e.ExtractWithRepair(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, IsRepairFailed(err))
	assert.Equal(t, 2, provider.calls, "never a second repair")
}

func TestExtractFacts_MissingEnumsDefault(t *testing.T) {
	// urgency, intent, sentiment, waiting_on all absent
	response := `{
		"primary_type": "nonsense-value",
		"summary": "short",
		"needs_response": false,
		"confidence": 0.3
	}`
	provider := &scriptedProvider{responses: []string{response}}
	e := newTestExtractor(t, provider)

	fact, err := e.ExtractFacts(context.Background(), &models.Message{Subject: "s", Sender: "a@b.c", BodyText: "b"})
	require.NoError(t, err)

	assert.Equal(t, models.PrimaryTypeFyi, fact.PrimaryType)
	assert.Equal(t, models.IntentInform, fact.Intent)
	assert.Equal(t, models.UrgencyLow, fact.Urgency)
	assert.Equal(t, models.SentimentNeutral, fact.Sentiment)
	assert.Equal(t, models.WaitingOnNone, fact.WaitingOn)
	assert.Empty(t, fact.KeyPoints)
	assert.Empty(t, fact.Risks)
	assert.Nil(t, fact.DueBy)
}

func TestExtractFacts_ConfidenceClampedAndListsMapped(t *testing.T) {
	response := `{
		"primary_type": "request",
		"summary": "Status update with blocker",
		"needs_response": true,
		"confidence": 0.8,
		"blockers": [
			{"title": "Vendor sign-off pending", "details": "waiting on legal", "severity": "high", "confidence": 7.5},
			{"details": "malformed, no title"},
			"not even an object"
		],
		"due_by": "2026-08-28T17:00:00Z"
	}`
	provider := &scriptedProvider{responses: []string{response}}
	e := newTestExtractor(t, provider)

	fact, err := e.ExtractFacts(context.Background(), &models.Message{
		Subject:  "Project X status",
		Sender:   "pm@example.com",
		BodyText: "We are blocked on vendor sign-off; need response by Friday",
	})
	require.NoError(t, err)

	assert.True(t, fact.NeedsResponse)
	require.Len(t, fact.Blockers, 1, "malformed entries dropped, valid entry kept")
	assert.Contains(t, fact.Blockers[0].Title, "sign-off")
	assert.Equal(t, models.SeverityHigh, fact.Blockers[0].Severity)
	assert.Equal(t, 1.0, fact.Blockers[0].Confidence, "out-of-range confidence clamped")
	require.NotNil(t, fact.DueBy)
	assert.Equal(t, 2026, fact.DueBy.Year())
	assert.Equal(t, "scripted", fact.Provenance.Provider)
	assert.Equal(t, "scripted-chat", fact.Provenance.Model, "provenance records the provider's chat model")
	assert.NotEmpty(t, fact.Provenance.RequestID)
}

func TestExtractFacts_PromptCarriesMessageFields(t *testing.T) {
	provider := &scriptedProvider{responses: []string{validResponse}}
	e := newTestExtractor(t, provider)

	_, err := e.ExtractFacts(context.Background(), &models.Message{
		Subject:  "Project X status",
		Sender:   "pm@example.com",
		BodyText: "We are blocked on vendor sign-off",
	})
	require.NoError(t, err)

	prompt := provider.requests[0].Messages[1].Content
	assert.Contains(t, prompt, "Subject: Project X status")
	assert.Contains(t, prompt, "From: pm@example.com")
	assert.Contains(t, prompt, "vendor sign-off")
	assert.Contains(t, prompt, "update|request|decision|fyi")
}
