// Package pipeline owns per-message processing: persist, extract, persist
// facts, embed, index. Ordering is strict; a message that fails extraction
// stays recorded as seen.
package pipeline

import (
	"context"
	"time"

	"mailfacts/internal/ai"
	"mailfacts/internal/identity"
	"mailfacts/internal/models"
	"mailfacts/internal/storage"

	"github.com/rs/zerolog"
)

// MessageStore is the slice of the relational store the pipeline writes to
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) (int64, error)
	SaveFacts(ctx context.Context, facts *models.ExtractedFact) error
}

// VectorIndex is the slice of the vector store the pipeline writes to
type VectorIndex interface {
	UpsertMessageVector(ctx context.Context, storeID, entryID string, vector []float32, payload storage.VectorPayload) error
}

// FactExtractor produces typed facts for one message
type FactExtractor interface {
	ExtractFacts(ctx context.Context, msg *models.Message) (*models.ExtractedFact, error)
}

// ProviderSource yields the currently active AI provider; satisfied by
// ai.Registry. The pipeline acquires a fresh handle per call so a provider
// swap between messages takes effect on the next message.
type ProviderSource interface {
	Active() ai.Provider
}

// ExtractionPipeline processes messages one at a time
type ExtractionPipeline struct {
	store     MessageStore
	vectors   VectorIndex
	extractor FactExtractor
	providers ProviderSource
	logger    zerolog.Logger
}

// New creates a pipeline over the given stores and extractor
func New(store MessageStore, vectors VectorIndex, extractor FactExtractor, providers ProviderSource, logger zerolog.Logger) *ExtractionPipeline {
	return &ExtractionPipeline{
		store:     store,
		vectors:   vectors,
		extractor: extractor,
		providers: providers,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// Process runs the six ordered steps for one message. The message upsert
// happens before extraction so a crash afterwards never loses the fact that
// the message was seen; failures in later steps are surfaced but do not undo
// the upsert.
func (p *ExtractionPipeline) Process(ctx context.Context, msg *models.Message) error {
	p.logger.Info().Str("subject", msg.Subject).Str("folder", msg.Folder).Msg("Processing message")

	msg.ContentHash = identity.ContentFingerprint(msg.Subject, msg.Sender, msg.BodyText)
	if msg.LastIndexedAt.IsZero() {
		msg.LastIndexedAt = time.Now().UTC()
	}

	id, err := p.store.SaveMessage(ctx, msg)
	if err != nil {
		return &ProcessError{Step: StepSaveMessage, Subject: msg.Subject, Folder: msg.Folder, Err: err}
	}
	msg.ID = id

	facts, err := p.extractor.ExtractFacts(ctx, msg)
	if err != nil {
		return &ProcessError{Step: StepExtractFacts, Subject: msg.Subject, Folder: msg.Folder, Err: err}
	}
	facts.MessageID = id

	if err := p.store.SaveFacts(ctx, facts); err != nil {
		return &ProcessError{Step: StepSaveFacts, Subject: msg.Subject, Folder: msg.Folder, Err: err}
	}

	embedding, err := p.providers.Active().GenerateEmbedding(ctx, msg.BodyText)
	if err != nil {
		return &ProcessError{Step: StepEmbed, Subject: msg.Subject, Folder: msg.Folder, Err: err}
	}

	payload := storage.VectorPayload{
		MessageID: id,
		Subject:   msg.Subject,
		Sender:    msg.Sender,
		Folder:    msg.Folder,
	}
	if err := p.vectors.UpsertMessageVector(ctx, msg.StoreID, msg.EntryID, embedding, payload); err != nil {
		return &ProcessError{Step: StepUpsertVector, Subject: msg.Subject, Folder: msg.Folder, Err: err}
	}

	p.logger.Info().Int64("message_id", id).Str("subject", msg.Subject).Msg("Successfully processed message")
	return nil
}
