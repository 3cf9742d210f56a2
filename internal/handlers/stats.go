package handlers

import (
	"net/http"
	"time"

	"mailfacts/internal/cache"
	"mailfacts/internal/models"
	"mailfacts/internal/storage"

	"github.com/labstack/echo/v4"
)

const (
	statsCacheKey = "pipeline_stats"
	statsCacheTTL = time.Minute
)

// StatsHandler returns aggregate message and sentiment counts
func StatsHandler(store *storage.Store, c *cache.Cache) echo.HandlerFunc {
	return func(ec echo.Context) error {
		if cached, found := c.Get(statsCacheKey); found {
			if stats, ok := cached.(*models.StatsResponse); ok {
				return ec.JSON(http.StatusOK, stats)
			}
		}

		stats, err := store.Stats(ec.Request().Context())
		if err != nil {
			return ec.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to load stats",
			})
		}

		c.Set(statsCacheKey, stats, statsCacheTTL)
		return ec.JSON(http.StatusOK, stats)
	}
}
