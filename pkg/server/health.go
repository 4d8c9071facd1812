package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// health handles GET /health requests.
func (api *APIServer) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": api.config.Version,
		"tenants": api.registry.Count(),
	})
}
