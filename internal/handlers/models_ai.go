package handlers

import (
	"net/http"

	"mailfacts/internal/ai"
	"mailfacts/internal/models"

	"github.com/labstack/echo/v4"
)

// ModelsHandler lists the models available on the active AI provider
func ModelsHandler(registry *ai.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		provider := registry.Active()
		names, err := provider.ListModels(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusBadGateway, models.ModelsResponse{
				Provider: provider.Name(),
				Error:    "Failed to list models",
			})
		}
		if names == nil {
			names = []string{}
		}
		return c.JSON(http.StatusOK, models.ModelsResponse{
			Provider: provider.Name(),
			Models:   names,
		})
	}
}
