// Package syncer drives the scan loop: one wide initial scan over the
// configured folders, then narrow delta scans on a fixed interval. There is
// no cursor; repeated scans over the same window are safe because every
// downstream write is an upsert keyed on stable identity.
package syncer

import (
	"context"
	"time"

	"mailfacts/internal/mailbox"
	"mailfacts/internal/models"

	"github.com/rs/zerolog"
)

// Processor handles one fetched message end to end; satisfied by
// pipeline.ExtractionPipeline.
type Processor interface {
	Process(ctx context.Context, msg *models.Message) error
}

// Options control scan windows and cadence. Zero values fall back to the
// defaults applied in NewManager.
type Options struct {
	Folders            []string
	InitialWindowDays  int
	DeltaWindowDays    int
	SyncIntervalMinute int
}

const (
	defaultInitialWindowDays  = 90
	defaultDeltaWindowDays    = 1
	defaultSyncIntervalMinute = 2
)

// Manager owns the periodic scan loop over a mail source.
type Manager struct {
	source    mailbox.Source
	processor Processor
	opts      Options
	logger    zerolog.Logger
}

// NewManager creates a scan manager, applying defaults for unset options.
func NewManager(source mailbox.Source, processor Processor, opts Options, logger zerolog.Logger) *Manager {
	if len(opts.Folders) == 0 {
		opts.Folders = []string{"INBOX"}
	}
	if opts.InitialWindowDays <= 0 {
		opts.InitialWindowDays = defaultInitialWindowDays
	}
	if opts.DeltaWindowDays <= 0 {
		opts.DeltaWindowDays = defaultDeltaWindowDays
	}
	if opts.SyncIntervalMinute <= 0 {
		opts.SyncIntervalMinute = defaultSyncIntervalMinute
	}
	return &Manager{
		source:    source,
		processor: processor,
		opts:      opts,
		logger:    logger.With().Str("component", "syncer").Logger(),
	}
}

// Run performs the initial scan, then loops on the sync interval until ctx
// is cancelled. Cancellation is observed between scans; an in-flight scan
// finishes its current message first.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info().
		Strs("folders", m.opts.Folders).
		Int("window_days", m.opts.InitialWindowDays).
		Msg("Starting initial scan")
	m.Scan(ctx, m.opts.InitialWindowDays)

	ticker := time.NewTicker(time.Duration(m.opts.SyncIntervalMinute) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Sync loop stopped")
			return ctx.Err()
		case <-ticker.C:
			m.Scan(ctx, m.opts.DeltaWindowDays)
		}
	}
}

// Scan fetches and processes every configured folder over the given window.
// A folder that fails to fetch is logged and skipped; a message that fails
// to process is logged and skipped. Exported so a manual resync can run a
// one-shot wide scan outside the loop.
func (m *Manager) Scan(ctx context.Context, windowDays int) {
	for _, folder := range m.opts.Folders {
		if ctx.Err() != nil {
			return
		}

		messages, err := m.source.FetchRecent(ctx, folder, windowDays)
		if err != nil {
			m.logger.Error().Err(err).Str("folder", folder).Msg("Failed to fetch folder")
			continue
		}

		processed := 0
		for i := range messages {
			if ctx.Err() != nil {
				return
			}
			if err := m.processor.Process(ctx, &messages[i]); err != nil {
				m.logger.Error().Err(err).
					Str("subject", messages[i].Subject).
					Str("folder", folder).
					Msg("Failed to process message")
				continue
			}
			processed++
		}
		m.logger.Info().
			Str("folder", folder).
			Int("fetched", len(messages)).
			Int("processed", processed).
			Msg("Folder scan complete")
	}
}
