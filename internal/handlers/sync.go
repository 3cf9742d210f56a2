package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"mailfacts/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Scanner runs one scan pass over the configured folders; satisfied by
// syncer.Manager.
type Scanner interface {
	Scan(ctx context.Context, windowDays int)
}

// SyncHandler triggers a one-shot wide rescan in the background. Upserts
// make overlap with the periodic loop harmless, but only one manual scan
// runs at a time.
func SyncHandler(scanner Scanner, windowDays int, logger zerolog.Logger) echo.HandlerFunc {
	var running atomic.Bool
	return func(c echo.Context) error {
		if !running.CompareAndSwap(false, true) {
			return c.JSON(http.StatusConflict, models.SyncResponse{
				Started: false,
				Message: "A manual sync is already running",
			})
		}

		go func() {
			defer running.Store(false)
			logger.Info().Int("window_days", windowDays).Msg("Manual sync started")
			scanner.Scan(context.Background(), windowDays)
			logger.Info().Msg("Manual sync finished")
		}()

		return c.JSON(http.StatusAccepted, models.SyncResponse{
			Started: true,
			Message: "Sync started",
		})
	}
}
