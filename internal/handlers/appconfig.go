package handlers

import (
	"context"
	"net/http"

	"mailfacts/internal/ai"
	"mailfacts/internal/models"
	"mailfacts/internal/storage"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Config keys that drive provider construction. Writing any of them rebuilds
// the provider from the stored settings and swaps it into the registry, so
// the change takes effect on the next AI call without a restart.
const (
	ConfigKeyAIProvider     = "ai_provider"
	ConfigKeyAIBaseURL      = "ai_base_url"
	ConfigKeyOpenAIKey      = "openai_api_key"
	ConfigKeyChatModel      = "chat_model"
	ConfigKeyEmbeddingModel = "embedding_model"
)

func isAIConfigKey(key string) bool {
	switch key {
	case ConfigKeyAIProvider, ConfigKeyAIBaseURL, ConfigKeyOpenAIKey,
		ConfigKeyChatModel, ConfigKeyEmbeddingModel:
		return true
	}
	return false
}

// LoadAISettings assembles provider settings from the config store, falling
// back to the given defaults for keys with no stored value.
func LoadAISettings(ctx context.Context, store *storage.Store, defaults ai.Settings) ai.Settings {
	settings := defaults
	if v, found, err := store.GetConfig(ctx, ConfigKeyAIProvider); err == nil && found {
		settings.ProviderType = v
	}
	if v, found, err := store.GetConfig(ctx, ConfigKeyAIBaseURL); err == nil && found {
		settings.BaseURL = v
	}
	if v, found, err := store.GetConfig(ctx, ConfigKeyOpenAIKey); err == nil && found {
		settings.APIKey = v
	}
	if v, found, err := store.GetConfig(ctx, ConfigKeyChatModel); err == nil && found {
		settings.ChatModel = v
	}
	if v, found, err := store.GetConfig(ctx, ConfigKeyEmbeddingModel); err == nil && found {
		settings.EmbeddingModel = v
	}
	return settings
}

// ConfigGetHandler returns a single config entry by key
func ConfigGetHandler(store *storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Param("key")

		value, found, err := store.GetConfig(c.Request().Context(), key)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to read config",
			})
		}
		if !found {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Config key not found",
			})
		}

		return c.JSON(http.StatusOK, models.ConfigResponse{Key: key, Value: value})
	}
}

// ConfigUpdateHandler writes a config entry. AI-related keys additionally
// rebuild the provider and hot-swap it into the registry.
func ConfigUpdateHandler(store *storage.Store, registry *ai.Registry, defaults ai.Settings, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Param("key")

		var req models.ConfigUpdateRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid request format",
			})
		}

		ctx := c.Request().Context()
		if err := store.SetConfig(ctx, key, req.Value); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to write config",
			})
		}

		if isAIConfigKey(key) {
			settings := LoadAISettings(ctx, store, defaults)
			provider := ai.NewProviderFromSettings(settings)
			registry.Swap(provider)
			logger.Info().
				Str("key", key).
				Str("provider", provider.Name()).
				Msg("AI provider swapped")
		}

		return c.JSON(http.StatusOK, models.ConfigResponse{Key: key, Value: req.Value})
	}
}
