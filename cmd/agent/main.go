package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailfacts/internal/ai"
	"mailfacts/internal/config"
	"mailfacts/internal/extract"
	"mailfacts/internal/handlers"
	"mailfacts/internal/mailbox"
	"mailfacts/internal/pipeline"
	"mailfacts/internal/server"
	"mailfacts/internal/storage"
	"mailfacts/internal/syncer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Relational store
	store, err := storage.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Vector index
	vectors, err := storage.NewVectorStore(ctx, cfg.QdrantHost, cfg.QdrantPort, uint64(cfg.EmbeddingDim))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to vector store")
	}
	defer vectors.Close()

	// AI provider: config defaults, overridden by anything stored at runtime
	defaults := ai.Settings{
		ProviderType:   cfg.AIProvider,
		BaseURL:        cfg.AIBaseURL,
		APIKey:         cfg.OpenAIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
	}
	settings := handlers.LoadAISettings(ctx, store, defaults)
	registry := ai.NewRegistry(ai.NewProviderFromSettings(settings))

	extractor, err := extract.NewExtractor(registry, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build extractor")
	}

	pipe := pipeline.New(store, vectors, extractor, registry, logger)
	drafter := pipeline.NewDrafter(store, vectors, registry, logger)

	// Mail sync loop
	var scanner handlers.Scanner = noopScanner{}
	if cfg.IMAPAddr != "" {
		source := mailbox.NewIMAPSource(cfg.IMAPAddr, cfg.IMAPUsername, cfg.IMAPPassword, logger)
		manager := syncer.NewManager(source, pipe, syncer.Options{
			Folders:            cfg.Folders,
			InitialWindowDays:  cfg.InitialWindowDays,
			DeltaWindowDays:    cfg.DeltaWindowDays,
			SyncIntervalMinute: cfg.SyncIntervalMinute,
		}, logger)

		go func() {
			if err := manager.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("Sync loop exited")
			}
		}()
		scanner = manager
	} else {
		logger.Warn().Msg("IMAP_ADDR not set, running API only without mail sync")
	}

	srv := server.New(cfg, store, vectors, registry, drafter, scanner, logger)
	srv.Initialize()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	// Block until the first SIGINT/SIGTERM, then restore default signal
	// handling so a second signal kills the process immediately.
	<-ctx.Done()
	stop()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
}

// noopScanner backs the manual sync endpoint when no mail source is
// configured
type noopScanner struct{}

func (noopScanner) Scan(context.Context, int) {}
