package pipeline

import (
	"context"
	"fmt"
	"strings"

	"mailfacts/internal/ai"
	"mailfacts/internal/models"
	"mailfacts/internal/storage"

	"github.com/rs/zerolog"
)

// DraftStore is the read slice of the relational store the drafter needs
type DraftStore interface {
	MessageByID(ctx context.Context, id int64) (*models.MessageWithFacts, error)
}

// VectorSearcher runs similarity queries against the vector index
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, folder string, limit uint64) ([]storage.ScoredMessage, error)
}

// Drafter generates reply drafts grounded in extracted facts and similar
// past messages. Drafting runs at a creative temperature, unlike extraction
// which is pinned to zero.
type Drafter struct {
	store     DraftStore
	vectors   VectorSearcher
	providers ProviderSource
	logger    zerolog.Logger
}

// NewDrafter creates a draft assistant over the given stores
func NewDrafter(store DraftStore, vectors VectorSearcher, providers ProviderSource, logger zerolog.Logger) *Drafter {
	return &Drafter{
		store:     store,
		vectors:   vectors,
		providers: providers,
		logger:    logger.With().Str("component", "drafter").Logger(),
	}
}

// GenerateDraft produces a reply draft for a stored message
func (d *Drafter) GenerateDraft(ctx context.Context, messageID int64) (string, error) {
	msg, err := d.store.MessageByID(ctx, messageID)
	if err != nil {
		return "", fmt.Errorf("failed to load message %d: %w", messageID, err)
	}

	summary := ""
	if msg.Summary != nil {
		summary = *msg.Summary
	}

	provider := d.providers.Active()

	// Style context from similar past messages; a search failure only costs
	// the context, not the draft
	var styleCtx strings.Builder
	embedding, err := provider.GenerateEmbedding(ctx, msg.BodyText)
	if err == nil {
		similar, searchErr := d.vectors.Search(ctx, embedding, "", 3)
		if searchErr != nil {
			d.logger.Warn().Err(searchErr).Msg("Style-context search failed, drafting without it")
		}
		for _, hit := range similar {
			if hit.MessageID == messageID {
				continue
			}
			fmt.Fprintf(&styleCtx, "Example Subject: %s\n", hit.Subject)
		}
	} else {
		d.logger.Warn().Err(err).Msg("Embedding for style context failed, drafting without it")
	}

	prompt := fmt.Sprintf(`Analyze the following email and draft a professional reply.

Original Subject: %s
Original From: %s
Summary of Facts: %s

Style context from similar emails:
%s
Body to reply to:
%s

Draft a reply that is concise, professional, and addresses all points in the summary.`,
		msg.Subject, msg.Sender, summary, styleCtx.String(), msg.BodyText)

	resp, err := provider.ChatCompletion(ctx, ai.ChatRequest{
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("draft generation failed: %w", err)
	}

	return resp.Content, nil
}
