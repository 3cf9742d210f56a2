package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"mailfacts/internal/models"
	"mailfacts/internal/storage"

	"github.com/labstack/echo/v4"
)

// DraftGenerator produces a reply draft for a stored message; satisfied by
// pipeline.Drafter.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, messageID int64) (string, error)
}

// DraftHandler generates a reply draft for the message with the given id
func DraftHandler(drafter DraftGenerator) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, models.DraftResponse{
				Error: "id must be a positive integer",
			})
		}

		draft, err := drafter.GenerateDraft(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrMessageNotFound) {
				return c.JSON(http.StatusNotFound, models.DraftResponse{
					Error: "Message not found",
				})
			}
			return c.JSON(http.StatusBadGateway, models.DraftResponse{
				Error: "Failed to generate draft",
			})
		}

		return c.JSON(http.StatusOK, models.DraftResponse{Draft: draft})
	}
}
