package server

import (
	"errors"
	"fmt"
	"net/http"

	"atlas/pkg/ingest"
	"atlas/pkg/log"
	"atlas/pkg/vectorindex"

	"github.com/labstack/echo/v4"
)

// ingestDocs handles POST /tenants/{tenant_id}/docs requests.
func (api *APIServer) ingestDocs(ctx echo.Context) error {
	tenantID := ctx.Param("tenant_id")

	var req ingest.Request
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}
	if len(req.Documents) == 0 {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "documents must not be empty",
		})
	}
	for i, doc := range req.Documents {
		if len(doc.Text) > api.config.MaxDocTextLen {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("document %d exceeds the maximum text length of %d", i, api.config.MaxDocTextLen),
			})
		}
	}

	result, err := api.ingest.Ingest(ctx.Request().Context(), tenantID, req)
	if err != nil {
		if errors.Is(err, vectorindex.ErrUnavailable) {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "vector index unavailable",
			})
		}
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("Ingestion failed")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "ingestion failed",
		})
	}

	return ctx.JSON(http.StatusOK, result)
}
