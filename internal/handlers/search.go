package handlers

import (
	"net/http"

	"mailfacts/internal/ai"
	"mailfacts/internal/models"
	"mailfacts/internal/storage"

	"github.com/labstack/echo/v4"
)

const defaultSearchLimit = 10

// SearchHandler embeds the query with the active provider, finds the nearest
// message vectors, then hydrates full rows from the relational store in
// score order.
func SearchHandler(store *storage.Store, vectors *storage.VectorStore, registry *ai.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.SearchRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.SearchResponse{
				Error: "Invalid request format",
			})
		}
		if req.Query == "" {
			return c.JSON(http.StatusBadRequest, models.SearchResponse{
				Error: "Query is required",
			})
		}
		limit := req.Limit
		if limit <= 0 {
			limit = defaultSearchLimit
		}

		ctx := c.Request().Context()

		embedding, err := registry.Active().GenerateEmbedding(ctx, req.Query)
		if err != nil {
			return c.JSON(http.StatusBadGateway, models.SearchResponse{
				Error: "Failed to embed query",
			})
		}

		scored, err := vectors.Search(ctx, embedding, req.Folder, uint64(limit))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.SearchResponse{
				Error: "Search failed",
			})
		}
		if len(scored) == 0 {
			return c.JSON(http.StatusOK, models.SearchResponse{Results: []models.MessageWithFacts{}})
		}

		ids := make([]int64, 0, len(scored))
		for _, hit := range scored {
			ids = append(ids, hit.MessageID)
		}

		results, err := store.MessagesByIDs(ctx, ids)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.SearchResponse{
				Error: "Failed to load messages",
			})
		}

		return c.JSON(http.StatusOK, models.SearchResponse{Results: results})
	}
}
