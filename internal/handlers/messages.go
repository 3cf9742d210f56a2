package handlers

import (
	"net/http"
	"strconv"
	"time"

	"mailfacts/internal/cache"
	"mailfacts/internal/models"
	"mailfacts/internal/storage"

	"github.com/labstack/echo/v4"
)

const (
	recentMessagesCacheKey = "recent_messages"
	recentMessagesCacheTTL = 30 * time.Second
	defaultRecentLimit     = 50
	maxRecentLimit         = 200
)

// RecentMessagesHandler returns the most recently received messages joined
// with their extracted facts. Results are cached briefly; the scan cadence
// is minutes, so a short TTL keeps reads cheap without staleness concerns.
func RecentMessagesHandler(store *storage.Store, c *cache.Cache) echo.HandlerFunc {
	return func(ec echo.Context) error {
		limit := defaultRecentLimit
		if raw := ec.QueryParam("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				return ec.JSON(http.StatusBadRequest, map[string]string{
					"error": "limit must be a positive integer",
				})
			}
			limit = parsed
		}
		if limit > maxRecentLimit {
			limit = maxRecentLimit
		}

		// Only the default page is cached; custom limits go to the database
		if limit == defaultRecentLimit {
			if cached, found := c.Get(recentMessagesCacheKey); found {
				if messages, ok := cached.([]models.MessageWithFacts); ok {
					return ec.JSON(http.StatusOK, messages)
				}
			}
		}

		messages, err := store.RecentMessages(ec.Request().Context(), limit)
		if err != nil {
			return ec.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to load messages",
			})
		}
		if messages == nil {
			messages = []models.MessageWithFacts{}
		}

		if limit == defaultRecentLimit {
			c.Set(recentMessagesCacheKey, messages, recentMessagesCacheTTL)
		}

		return ec.JSON(http.StatusOK, messages)
	}
}
