package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mailfacts/internal/ai"
	"mailfacts/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const extractionSystemPrompt = "You are an expert email analyst. Output valid JSON only."

const repairSystemPrompt = "You are a JSON repair specialist. Output corrected JSON only."

// extractionPromptTemplate is the single deterministic prompt used for every
// extraction. The taxonomy enumerations here must stay in lockstep with the
// enum types in internal/models.
const extractionPromptTemplate = `Analyze the following email and extract structured facts.
Respond ONLY with a JSON object matching this schema:
{
  "primary_type": "update|request|decision|fyi",
  "intent": "inform|ask|escalate|commit|clarify|resolve",
  "urgency": "low|medium|high",
  "sentiment": "neutral|positive|concerned|hostile",
  "waiting_on": "me|them|third_party|none",
  "summary": "string, at most 500 characters",
  "key_points": ["string"],
  "risks": [{"title": "string", "details": "string", "owner": "string or null", "severity": "low|medium|high", "confidence": 0.0-1.0}],
  "issues": [{"title": "string", "details": "string", "owner": "string or null", "severity": "low|medium|high", "confidence": 0.0-1.0}],
  "blockers": [{"title": "string", "details": "string", "owner": "string or null", "severity": "low|medium|high", "confidence": 0.0-1.0}],
  "open_questions": [{"question": "string", "asked_by": "string or null", "owner": "string or null", "due_by": "ISO-8601 or null", "confidence": 0.0-1.0}],
  "answered_questions": [{"question": "string", "answer_summary": "string", "confidence": 0.0-1.0}],
  "due_by": "ISO-8601 timestamp or null",
  "needs_response": true|false,
  "confidence": 0.0-1.0
}

Subject: %s
From: %s
Body: %s`

// Extractor builds extraction prompts, drives the model through the
// validate-then-repair loop, and maps validated JSON into typed facts
type Extractor struct {
	registry  *ai.Registry
	validator *Validator
	logger    zerolog.Logger
}

// NewExtractor creates an extractor bound to the provider registry
func NewExtractor(registry *ai.Registry, logger zerolog.Logger) (*Extractor, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	return &Extractor{
		registry:  registry,
		validator: validator,
		logger:    logger.With().Str("component", "extractor").Logger(),
	}, nil
}

// ExtractFacts runs the full extraction for one message and maps the result
// into a typed fact record. Field-level anomalies in the model output are
// defaulted, never fatal; only transport failures and exhausted repair fail
// the message.
func (e *Extractor) ExtractFacts(ctx context.Context, msg *models.Message) (*models.ExtractedFact, error) {
	prompt := fmt.Sprintf(extractionPromptTemplate, msg.Subject, msg.Sender, msg.BodyText)

	provider := e.registry.Active()
	raw, err := e.extractWithRepair(ctx, provider, prompt)
	if err != nil {
		return nil, err
	}

	fact := e.mapFacts(raw)
	fact.Provenance = models.Provenance{
		Model:     provider.Model(),
		Provider:  provider.Name(),
		RequestID: uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	fact.CreatedAt = time.Now().UTC()
	return fact, nil
}

// ExtractWithRepair exposes the validate-then-repair loop against the active
// provider, returning the decoded JSON object
func (e *Extractor) ExtractWithRepair(ctx context.Context, text string) (map[string]any, error) {
	return e.extractWithRepair(ctx, e.registry.Active(), text)
}

// extractWithRepair runs one extraction, and on schema failure exactly one
// repair round-trip. A second failure is final; a misbehaving model must not
// cost unbounded retries.
func (e *Extractor) extractWithRepair(ctx context.Context, provider ai.Provider, text string) (map[string]any, error) {
	content, raw, err := e.runExtraction(ctx, provider, extractionSystemPrompt, text)
	if err != nil {
		return nil, err
	}

	if raw != nil && e.validator.Validate(raw) {
		obj, ok := raw.(map[string]any)
		if ok {
			return obj, nil
		}
	}

	e.logger.Warn().Msg("Extraction output failed validation, attempting repair pass")

	repairText := fmt.Sprintf("The previous JSON output was invalid according to the schema. Fix it.\n\nText: %s\n\nInvalid JSON: %s", text, content)
	_, repaired, err := e.runExtraction(ctx, provider, repairSystemPrompt, repairText)
	if err != nil {
		return nil, err
	}

	if repaired == nil || !e.validator.Validate(repaired) {
		return nil, &RepairFailedError{Detail: "repaired output still invalid"}
	}
	obj, ok := repaired.(map[string]any)
	if !ok {
		return nil, &RepairFailedError{Detail: "repaired output is not a JSON object"}
	}
	return obj, nil
}

// runExtraction performs one model call at temperature 0 in strict-JSON mode.
// It returns the raw content alongside the decoded value; a content that is
// not valid JSON at all yields a nil decoded value, which the caller treats
// the same as a validation failure.
func (e *Extractor) runExtraction(ctx context.Context, provider ai.Provider, systemPrompt, userPrompt string) (string, any, error) {
	resp, err := provider.ChatCompletion(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0,
		ResponseFormat: ai.ResponseFormatJSON,
	})
	if err != nil {
		return "", nil, fmt.Errorf("extraction call failed: %w", err)
	}

	decoded, err := jsonschema.UnmarshalJSON(strings.NewReader(resp.Content))
	if err != nil {
		return resp.Content, nil, nil
	}
	return resp.Content, decoded, nil
}

// mapFacts applies the documented default table to decoded model output.
// Every enum falls back to its default, every list to empty, and individual
// malformed list entries are dropped without failing the item.
func (e *Extractor) mapFacts(raw map[string]any) *models.ExtractedFact {
	fact := &models.ExtractedFact{
		PrimaryType:   models.ParsePrimaryType(getString(raw, "primary_type")),
		Intent:        models.ParseIntent(getString(raw, "intent")),
		Urgency:       models.ParseUrgency(getString(raw, "urgency")),
		Sentiment:     models.ParseSentiment(getString(raw, "sentiment")),
		WaitingOn:     models.ParseWaitingOn(getString(raw, "waiting_on")),
		Summary:       getString(raw, "summary"),
		KeyPoints:     getStringList(raw, "key_points"),
		NeedsResponse: getBool(raw, "needs_response"),
		DueBy:         getTime(raw, "due_by"),
		Confidence:    models.ClampConfidence(getFloat(raw, "confidence")),
	}

	fact.Risks = make([]models.Risk, 0)
	for _, entry := range getObjectList(raw, "risks") {
		if r, ok := mapTrackedItem(entry); ok {
			fact.Risks = append(fact.Risks, models.Risk(r))
		}
	}

	fact.Issues = make([]models.Issue, 0)
	for _, entry := range getObjectList(raw, "issues") {
		if r, ok := mapTrackedItem(entry); ok {
			fact.Issues = append(fact.Issues, models.Issue(r))
		}
	}

	fact.Blockers = make([]models.Blocker, 0)
	for _, entry := range getObjectList(raw, "blockers") {
		if r, ok := mapTrackedItem(entry); ok {
			fact.Blockers = append(fact.Blockers, models.Blocker(r))
		}
	}

	fact.OpenQuestions = make([]models.OpenQuestion, 0)
	for _, entry := range getObjectList(raw, "open_questions") {
		question := getString(entry, "question")
		if question == "" {
			continue
		}
		fact.OpenQuestions = append(fact.OpenQuestions, models.OpenQuestion{
			Question:   question,
			AskedBy:    getStringPtr(entry, "asked_by"),
			Owner:      getStringPtr(entry, "owner"),
			DueBy:      getTime(entry, "due_by"),
			Confidence: models.ClampConfidence(getFloat(entry, "confidence")),
		})
	}

	fact.AnsweredQuestions = make([]models.AnsweredQuestion, 0)
	for _, entry := range getObjectList(raw, "answered_questions") {
		question := getString(entry, "question")
		if question == "" {
			continue
		}
		fact.AnsweredQuestions = append(fact.AnsweredQuestions, models.AnsweredQuestion{
			Question:      question,
			AnswerSummary: getString(entry, "answer_summary"),
			Confidence:    models.ClampConfidence(getFloat(entry, "confidence")),
		})
	}

	return fact
}

// trackedItem is the shared shape of risks, issues and blockers
type trackedItem struct {
	Title      string
	Details    string
	Owner      *string
	Severity   models.Severity
	Confidence float64
}

func mapTrackedItem(entry map[string]any) (trackedItem, bool) {
	title := getString(entry, "title")
	if title == "" {
		return trackedItem{}, false
	}
	return trackedItem{
		Title:      title,
		Details:    getString(entry, "details"),
		Owner:      getStringPtr(entry, "owner"),
		Severity:   models.ParseSeverity(getString(entry, "severity")),
		Confidence: models.ClampConfidence(getFloat(entry, "confidence")),
	}, true
}
